package domain

// RubricCategory is the registry entry for one LIFT category: display
// metadata plus the assertion templates the generator is asked to judge.
type RubricCategory struct {
	Name        string
	ShortName   string
	Description string
	IsInhibitor bool
	Weight      float64 // generation-time weight, used only in the prompt
	Assertions  []AssertionTemplate
}

// AssertionTemplate is the rubric definition of one assertion.
type AssertionTemplate struct {
	ID       string
	Name     string
	Question string
	Severity Severity
}

// rubric is the fixed LIFT catalog. Read-only; consumers that need a default
// for a missing field look it up here.
var rubric = map[CategoryKey]RubricCategory{
	KeyValueProposition: {
		Name:        "Value Proposition",
		ShortName:   "VP",
		Description: "Why should visitors choose you over alternatives?",
		Weight:      0.25,
		Assertions: []AssertionTemplate{
			{ID: "VP_CLEAR", Name: "Clear Value", Question: "Is the value proposition clear within 5 seconds?", Severity: SeverityCritical},
			{ID: "VP_UNIQUE", Name: "Differentiation", Question: "Is there clear differentiation from competitors?", Severity: SeverityHigh},
			{ID: "VP_BENEFIT", Name: "Benefits vs Features", Question: "Are benefits emphasized over features?", Severity: SeverityMedium},
			{ID: "VP_SPECIFIC", Name: "Specificity", Question: "Are claims specific and quantifiable?", Severity: SeverityMedium},
		},
	},
	KeyClarity: {
		Name:        "Clarity",
		ShortName:   "CL",
		Description: "How quickly can visitors understand your offering?",
		Weight:      0.20,
		Assertions: []AssertionTemplate{
			{ID: "CL_HIERARCHY", Name: "Visual Hierarchy", Question: "Is visual hierarchy clear and guides the eye?", Severity: SeverityHigh},
			{ID: "CL_HEADLINE", Name: "Headline Clarity", Question: "Is the headline understandable without context?", Severity: SeverityHigh},
			{ID: "CL_CTA", Name: "CTA Clarity", Question: "Does CTA clearly communicate what happens next?", Severity: SeverityCritical},
			{ID: "CL_FLOW", Name: "Content Flow", Question: "Is the page structure logical?", Severity: SeverityMedium},
			{ID: "CL_LANGUAGE", Name: "Language Simplicity", Question: "Is the language free of jargon and easy to understand?", Severity: SeverityMedium},
		},
	},
	KeyRelevance: {
		Name:        "Relevance",
		ShortName:   "RL",
		Description: "Does the page match visitor expectations?",
		Weight:      0.15,
		Assertions: []AssertionTemplate{
			{ID: "RL_MESSAGE", Name: "Message Match", Question: "Does page content match the traffic source promise?", Severity: SeverityCritical},
			{ID: "RL_AUDIENCE", Name: "Audience Fit", Question: "Does the language match target audience?", Severity: SeverityHigh},
			{ID: "RL_INTENT", Name: "Intent Match", Question: "Does page serve the user intent?", Severity: SeverityHigh},
			{ID: "RL_CONTEXT", Name: "Contextual Relevance", Question: "Is the content contextually appropriate for the visitor stage?", Severity: SeverityMedium},
		},
	},
	KeyAnxiety: {
		Name:        "Anxiety",
		ShortName:   "AX",
		Description: "Trust inhibitors that prevent conversion",
		IsInhibitor: true,
		Weight:      0.20,
		Assertions: []AssertionTemplate{
			{ID: "AX_SOCIAL", Name: "Social Proof", Question: "Are there credible social proof elements?", Severity: SeverityCritical},
			{ID: "AX_TRUST", Name: "Trust Signals", Question: "Are trust badges and security indicators present?", Severity: SeverityHigh},
			{ID: "AX_RISK", Name: "Risk Reversal", Question: "Is the perceived risk minimized?", Severity: SeverityHigh},
			{ID: "AX_CONTACT", Name: "Contact Access", Question: "Can visitors easily reach support?", Severity: SeverityMedium},
			{ID: "AX_PRIVACY", Name: "Privacy Assurance", Question: "Are privacy concerns addressed?", Severity: SeverityLow},
			{ID: "AX_CREDIBILITY", Name: "Credibility Markers", Question: "Are there authority/expertise indicators?", Severity: SeverityHigh},
		},
	},
	KeyDistraction: {
		Name:        "Distraction",
		ShortName:   "DI",
		Description: "Elements that divert from the conversion goal",
		IsInhibitor: true,
		Weight:      0.10,
		Assertions: []AssertionTemplate{
			{ID: "DI_FOCUS", Name: "Single Goal", Question: "Does the page have one clear conversion goal?", Severity: SeverityCritical},
			{ID: "DI_NAV", Name: "Navigation", Question: "Is navigation minimized to reduce exit points?", Severity: SeverityMedium},
			{ID: "DI_LINKS", Name: "Outbound Links", Question: "Are outbound links minimized?", Severity: SeverityLow},
			{ID: "DI_VISUAL", Name: "Visual Noise", Question: "Is the design clean without visual clutter?", Severity: SeverityMedium},
			{ID: "DI_COMPETING", Name: "Competing CTAs", Question: "Is there a single primary CTA without competing actions?", Severity: SeverityHigh},
		},
	},
	KeyUrgency: {
		Name:        "Urgency",
		ShortName:   "UR",
		Description: "Motivation to act now rather than later",
		Weight:      0.10,
		Assertions: []AssertionTemplate{
			{ID: "UR_SCARCITY", Name: "Scarcity", Question: "Are there legitimate scarcity elements?", Severity: SeverityMedium},
			{ID: "UR_INCENTIVE", Name: "Time Incentive", Question: "Is there a reason to act now?", Severity: SeverityHigh},
			{ID: "UR_LOSS", Name: "Loss Aversion", Question: "Is the cost of inaction communicated?", Severity: SeverityMedium},
		},
	},
}

// Rubric returns the registry entry for one of the six fixed keys.
// Passing any other key is a programmer error and panics.
func Rubric(key CategoryKey) RubricCategory {
	rc, ok := rubric[key]
	if !ok {
		panic("unknown rubric category: " + string(key))
	}
	return rc
}

// NewCategoryFromRubric synthesizes an empty category from the registry,
// used when the generator omitted one entirely.
func NewCategoryFromRubric(key CategoryKey) Category {
	rc := Rubric(key)
	return Category{
		Name:        rc.Name,
		ShortName:   rc.ShortName,
		Description: rc.Description,
		Score:       defaultScore,
		IsInhibitor: rc.IsInhibitor,
		Assertions:  []Assertion{},
	}
}
