package render

// One template per contact category. The first line carries the subject;
// the rest is the plain-text body. Rendering appends nothing, so the
// opt-out footer lives inside each template.
var templates = map[string]string{
	"publication": `Subject: Story Idea: AI Co-Founder Platform Helping 1000+ Startups Build Smarter

{{.Greeting}},

I hope this message finds you well. I'm reaching out because {{.Organization}}'s coverage of {{.FocusArea}} aligns perfectly with a story I think your readers would find compelling.

Buildly Labs Foundry has developed an AI co-founder platform that's helping over 1,000 startups move from idea to launch faster:

- AI-powered product planning and roadmapping
- Automated development team matching
- Real-time project health monitoring

Several of our portfolio startups have gone from concept to revenue in under 90 days, and we have founders happy to share their stories.

Would you be interested in learning more? I can share case studies, founder interviews, or a product walkthrough.

Best regards,
Greg Lind
CEO, Buildly Labs
{{.SiteURL}}

---
If you'd prefer not to receive these emails, you can opt out here: {{.OptOutLink}}`,

	"influencer": `Subject: Partnership Opportunity: AI Co-Founder Platform for Your Audience

{{.Greeting}},

I've been following your work around {{.FocusArea}} and think there's a natural fit with what we're building at Buildly Labs.

Our Foundry platform acts as an AI co-founder for early-stage startups, handling product planning, team assembly, and launch readiness so founders can focus on their customers.

For your audience, we can offer:

- Free extended trials for your community
- Co-created content walking through real founder journeys
- Revenue share on referred signups

If that sounds interesting, I'd love to set up a short call to explore what a partnership could look like.

Best regards,
Greg Lind
CEO, Buildly Labs
{{.SiteURL}}

---
If you'd prefer not to receive these emails, you can opt out here: {{.OptOutLink}}`,

	"platform": `Subject: Integration Partnership: Buildly Labs Foundry x {{.Organization}}

{{.Greeting}},

I'm reaching out from Buildly Labs about a potential integration between our Foundry platform and {{.Organization}}.

Foundry is an AI co-founder platform supporting 1,000+ early-stage startups with product planning, team matching, and launch tooling. Given {{.Organization}}'s strength in {{.FocusArea}}, our users overlap heavily with yours.

A few ways we could work together:

- Listing Foundry in your marketplace or directory
- API integration so founders can move between our tools seamlessly
- Cross-promotion to each other's startup communities

Would someone on your partnerships team be open to a quick conversation?

Best regards,
Greg Lind
CEO, Buildly Labs
{{.SiteURL}}

---
If you'd prefer not to receive these emails, you can opt out here: {{.OptOutLink}}`,

	"community": `Subject: Resource for Your Community: AI Co-Founder Platform

{{.Greeting}},

I run Buildly Labs, where we've built Foundry, an AI co-founder platform that helps early-stage founders plan products, assemble teams, and get to launch. I'm reaching out because your community's focus on {{.FocusArea}} is exactly who we built it for.

We'd love to support your members with:

- Free Foundry access for community members
- An AMA or workshop on AI-assisted product development
- Sponsorship of community events or newsletters

No strings attached on the free access; we just want to be useful to founders where they already gather.

Happy to share more details if this sounds like a fit.

Best regards,
Greg Lind
CEO, Buildly Labs
{{.SiteURL}}

---
If you'd prefer not to receive these emails, you can opt out here: {{.OptOutLink}}`,
}
