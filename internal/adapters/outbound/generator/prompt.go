package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/liftlens/liftlens/internal/domain"
)

const systemPrompt = "You are a senior CRO specialist. Return ONLY valid JSON matching the exact structure requested. All text must be in English. Be specific and evidence-based in your analysis."

// BuildPrompt renders the audit instructions for one snapshot. The assertion
// catalog and category weights come straight from the rubric registry so the
// prompt can never drift from what the repair step expects back.
func BuildPrompt(snap *domain.Snapshot) string {
	var b strings.Builder

	b.WriteString(`You are a senior CRO (Conversion Rate Optimization) specialist conducting a professional audit using the LIFT Model framework combined with PXL prioritization methodology.

## YOUR ROLE
You are performing a comprehensive CRO audit for experienced conversion optimization professionals. Your audience understands frameworks like LIFT Model, PXL, ICE scoring, and expects data-driven, evidence-based analysis. Do NOT oversimplify or provide generic advice.

## FRAMEWORK: LIFT MODEL
The LIFT Model evaluates landing pages across 6 factors.

**Value Drivers (increase motivation):**
`)
	for _, key := range domain.CategoryKeys {
		rc := domain.Rubric(key)
		if !rc.IsInhibitor {
			fmt.Fprintf(&b, "- **%s** - %s\n", rc.Name, rc.Description)
		}
	}
	b.WriteString("\n**Conversion Inhibitors (decrease motivation):**\n")
	for _, key := range domain.CategoryKeys {
		rc := domain.Rubric(key)
		if rc.IsInhibitor {
			fmt.Fprintf(&b, "- **%s** - %s\n", rc.Name, rc.Description)
		}
	}

	b.WriteString(`
## FRAMEWORK: PXL PRIORITIZATION
For each A/B test recommendation, calculate PXL score based on binary factors:
- **Above Fold** (+15): Is the change above the fold?
- **Noticeable in 5 Seconds** (+15): Will users notice within 5 seconds?
- **Run on High-Traffic Page** (+15): Is this a high-traffic page?
- **Affects All Users** (+15): Does it impact all visitors (not just a segment)?
- **Easy to Implement** (+20): Can it be implemented quickly?
- **Evidence-Backed** (+20): Is there research/data supporting this hypothesis?

PXL Score = Sum of applicable factors (max 100)

## ASSERTIONS TO EVALUATE
For each LIFT category, evaluate these specific assertions:
`)
	for _, key := range domain.CategoryKeys {
		rc := domain.Rubric(key)
		suffix := ""
		if rc.IsInhibitor {
			suffix = " - INHIBITOR"
		}
		fmt.Fprintf(&b, "\n### %s (%s)%s\n", rc.Name, rc.ShortName, suffix)
		for _, a := range rc.Assertions {
			fmt.Fprintf(&b, "- %s: %s\n", a.ID, a.Question)
		}
	}

	b.WriteString(`
## SCORING GUIDELINES

**Category Scores (0-100):**
- 90-100: Excellent, best practice implementation
- 70-89: Good, minor improvements possible
- 50-69: Needs work, significant opportunities
- 30-49: Poor, major issues present
- 0-29: Critical, fundamental problems

**Overall Score Calculation:**
Weight categories: `)
	var weights []string
	for _, key := range domain.CategoryKeys {
		rc := domain.Rubric(key)
		weights = append(weights, fmt.Sprintf("%s(%d%%)", rc.ShortName, int(rc.Weight*100)))
	}
	b.WriteString(strings.Join(weights, ", "))
	b.WriteString(`
For inhibitors (AX, DI): High score = LOW anxiety/distraction (good)

**Assertion Status:**
- "pass": Assertion is satisfied
- "fail": Clear violation or absence
- "warning": Partial implementation or concerns

## CRITICAL ISSUES
Extract top 3-5 issues with severity "critical" or "high" that have the biggest conversion impact.

## QUICK WINS
Identify 2-4 changes that are:
- Easy to implement (< 2 hours)
- High expected impact
- Low risk

## A/B TESTS
Generate 3-5 prioritized test recommendations:
- Each linked to a specific assertion failure
- Proper PXL scoring with factor breakdown
- 2-3 variants including control
- Clear hypothesis following format: "If we [change], then [metric] will [improve] because [reason]"

## OUTPUT FORMAT
Return a valid JSON object with this EXACT structure:

{
  "url": "extracted from snapshot or 'Unknown'",
  "analyzedAt": "ISO timestamp",
  "overallScore": 0-100,
  "liftCategories": {
    "valueProposition": {
      "name": "Value Proposition",
      "shortName": "VP",
      "score": 0-100,
      "description": "category description",
      "assertions": [
        {
          "id": "VP_CLEAR",
          "name": "Clear Value",
          "question": "Is the value proposition clear within 5 seconds?",
          "status": "pass|fail|warning",
          "severity": "critical|high|medium|low",
          "evidence": "Specific observation from the page",
          "recommendation": "Specific actionable fix or null if passed"
        }
      ]
    },
    "clarity": { ... },
    "relevance": { ... },
    "anxiety": { ..., "isInhibitor": true },
    "distraction": { ..., "isInhibitor": true },
    "urgency": { ... }
  },
  "criticalIssues": [
    { "id": "assertion_id", "category": "Category Name", "title": "Brief description", "impact": "critical|high" }
  ],
  "quickWins": [
    { "title": "Change description", "current": "What exists now", "suggested": "What to change to", "effort": "easy", "impact": "high" }
  ],
  "tests": [
    {
      "id": 1,
      "priority": "critical|high|medium",
      "pxlScore": 0-100,
      "title": "Test name",
      "hypothesis": "If we [change], then [metric] will [improve] because [reason]",
      "assertionId": "linked assertion",
      "category": "LIFT category",
      "variants": [
        { "name": "Control", "description": "Current state" },
        { "name": "Variant A", "description": "Proposed change" }
      ],
      "expectedImpact": "high|medium|low",
      "implementationEffort": "easy|medium|hard",
      "pxlFactors": {
        "aboveFold": true|false,
        "noticeableIn5Sec": true|false,
        "runOnHighTraffic": true|false,
        "affectsAllUsers": true|false,
        "easyToImplement": true|false,
        "evidenceBacked": true|false
      }
    }
  ]
}

## STRICT RULES
1. ALL text output MUST be in English
2. Return ONLY valid JSON - no markdown, no explanations
3. Every assertion MUST have evidence from the actual page data
4. Every recommendation MUST be specific and actionable
5. Do NOT invent elements not present in the snapshot
6. If data is insufficient, mark assertion as "warning" with evidence explaining the limitation
7. Be critical and direct - this is a professional audit
8. Inhibitor categories (anxiety, distraction): HIGH score = GOOD (low anxiety/distraction)

## PAGE DATA TO ANALYZE
`)

	snapJSON, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		snapJSON = []byte("{}")
	}
	b.Write(snapJSON)

	return b.String()
}
