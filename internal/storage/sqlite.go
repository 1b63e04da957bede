//go:build sqlite
// +build sqlite

package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"outreachbot/internal/outreach"
	logx "outreachbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate() error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.Exec(string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) LoadContacts() ([]outreach.Contact, error) {
	rows, err := s.db.Query(`SELECT email, name, organization, role, source, category,
		social_links, contact_date, response_received, notes, outreach_count, last_contact
		FROM contacts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outreach.Contact
	for rows.Next() {
		var c outreach.Contact
		var links string
		var contactDate, lastContact sql.NullString
		var responded int
		if err := rows.Scan(&c.Email, &c.Name, &c.Organization, &c.Role, &c.Source,
			&c.Category, &links, &contactDate, &responded, &c.Notes, &c.OutreachCount, &lastContact); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(links), &c.SocialLinks); err != nil {
			return nil, fmt.Errorf("contacts %s: social_links: %w", c.Email, err)
		}
		c.ResponseReceived = responded != 0
		if c.ContactDate, err = parseNullTime(contactDate); err != nil {
			return nil, err
		}
		if c.LastContact, err = parseNullTime(lastContact); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveContacts(contacts []outreach.Contact) error {
	return s.replaceAll("contacts", func(tx *sql.Tx) error {
		for _, c := range contacts {
			links, err := json.Marshal(c.SocialLinks)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`INSERT INTO contacts(email, name, organization, role, source, category,
				social_links, contact_date, response_received, notes, outreach_count, last_contact)
				VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
				c.Email, c.Name, c.Organization, c.Role, c.Source, string(c.Category),
				string(links), fmtNullTime(c.ContactDate), boolInt(c.ResponseReceived),
				c.Notes, c.OutreachCount, fmtNullTime(c.LastContact))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqliteStore) LoadTargets() ([]outreach.Target, error) {
	rows, err := s.db.Query(`SELECT website, name, category, focus_areas, contact_methods,
		priority, contacts_found, last_scraped, region FROM targets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outreach.Target
	for rows.Next() {
		var t outreach.Target
		var focus, methods string
		var lastScraped sql.NullString
		if err := rows.Scan(&t.Website, &t.Name, &t.Category, &focus, &methods,
			&t.Priority, &t.ContactsFound, &lastScraped, &t.Region); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(focus), &t.FocusAreas); err != nil {
			return nil, fmt.Errorf("targets %s: focus_areas: %w", t.Website, err)
		}
		if err := json.Unmarshal([]byte(methods), &t.ContactMethods); err != nil {
			return nil, fmt.Errorf("targets %s: contact_methods: %w", t.Website, err)
		}
		if t.LastScraped, err = parseNullTime(lastScraped); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveTargets(targets []outreach.Target) error {
	return s.replaceAll("targets", func(tx *sql.Tx) error {
		for _, t := range targets {
			focus, err := json.Marshal(t.FocusAreas)
			if err != nil {
				return err
			}
			methods, err := json.Marshal(t.ContactMethods)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`INSERT INTO targets(website, name, category, focus_areas,
				contact_methods, priority, contacts_found, last_scraped, region)
				VALUES(?,?,?,?,?,?,?,?,?)`,
				t.Website, t.Name, string(t.Category), string(focus), string(methods),
				t.Priority, t.ContactsFound, fmtNullTime(t.LastScraped), t.Region)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqliteStore) LoadPending() ([]outreach.Pending, error) {
	rows, err := s.db.Query(`SELECT id, contact, subject, body, template_id, ts, approved, sent
		FROM pending_outreach ORDER BY ts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outreach.Pending
	for rows.Next() {
		var p outreach.Pending
		var contact, ts string
		var approved, sent int
		if err := rows.Scan(&p.ID, &contact, &p.Message.Subject, &p.Message.Body,
			&p.Message.TemplateID, &ts, &approved, &sent); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(contact), &p.Contact); err != nil {
			return nil, fmt.Errorf("pending %s: contact: %w", p.ID, err)
		}
		if p.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("pending %s: ts: %w", p.ID, err)
		}
		p.Approved = approved != 0
		p.Sent = sent != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SavePending(pending []outreach.Pending) error {
	return s.replaceAll("pending_outreach", func(tx *sql.Tx) error {
		for _, p := range pending {
			contact, err := json.Marshal(p.Contact)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`INSERT INTO pending_outreach(id, contact, subject, body, template_id, ts, approved, sent)
				VALUES(?,?,?,?,?,?,?,?)`,
				p.ID, string(contact), p.Message.Subject, p.Message.Body, p.Message.TemplateID,
				p.Timestamp.Format(time.RFC3339Nano), boolInt(p.Approved), boolInt(p.Sent))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqliteStore) LoadLog() ([]outreach.LogEntry, error) {
	rows, err := s.db.Query(`SELECT ts, contact_name, contact_email, organization, subject,
		template_id, status, err FROM outreach_log ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outreach.LogEntry
	for rows.Next() {
		var e outreach.LogEntry
		var ts string
		var errStr sql.NullString
		if err := rows.Scan(&ts, &e.ContactName, &e.ContactEmail, &e.Organization,
			&e.Subject, &e.TemplateID, &e.Status, &errStr); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("outreach_log: ts: %w", err)
		}
		e.Error = errStr.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) AppendLog(entries ...outreach.LogEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, e := range entries {
		_, err := tx.Exec(`INSERT INTO outreach_log(ts, contact_name, contact_email,
			organization, subject, template_id, status, err) VALUES(?,?,?,?,?,?,?,?)`,
			e.Timestamp.Format(time.RFC3339Nano), e.ContactName, e.ContactEmail,
			e.Organization, e.Subject, e.TemplateID, string(e.Status), nullStr(e.Error))
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) LoadOptOuts() ([]outreach.OptOutEntry, error) {
	rows, err := s.db.Query(`SELECT email, reason, ts, source FROM opt_outs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outreach.OptOutEntry
	for rows.Next() {
		var e outreach.OptOutEntry
		var ts string
		if err := rows.Scan(&e.Email, &e.Reason, &ts, &e.Source); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("opt_outs: ts: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveOptOuts(entries []outreach.OptOutEntry) error {
	return s.replaceAll("opt_outs", func(tx *sql.Tx) error {
		for _, e := range entries {
			_, err := tx.Exec(`INSERT INTO opt_outs(email, reason, ts, source) VALUES(?,?,?,?)`,
				e.Email, e.Reason, e.Timestamp.Format(time.RFC3339Nano), string(e.Source))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// replaceAll rewrites a table inside one transaction, matching the
// full-overwrite checkpoint semantics of the file driver.
func (s *sqliteStore) replaceAll(table string, insert func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := insert(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func fmtNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
