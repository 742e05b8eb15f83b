package domain

import "context"

// SnapshotSource captures a webpage and distills it into the textual
// snapshot the generator prompts with.
type SnapshotSource interface {
	Capture(ctx context.Context, url string) (*Snapshot, error)
}

// Snapshot is the distilled content of one webpage at analysis time. The
// conversion-relevant signals (social proof, trust, urgency, fold, sections)
// are collected alongside the raw text so the generator can judge the
// anxiety, distraction and urgency categories against evidence.
type Snapshot struct {
	URL          string            `json:"url"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Language     string            `json:"language"`
	Headings     []string          `json:"headings"`
	CTAs         []string          `json:"ctas"`
	Forms        []string          `json:"forms"`
	Images       ImageSummary      `json:"images"`
	SocialProof  []string          `json:"socialProof"`
	TrustSignals []string          `json:"trustSignals"`
	Navigation   NavigationSummary `json:"navigation"`
	AboveFold    AboveFold         `json:"aboveFold"`
	Sections     []SectionSummary  `json:"sections"`
	Urgency      []string          `json:"urgency"`
	Content      string            `json:"content"`
	CapturedAt   string            `json:"capturedAt"`
}

// ImageSummary counts page images and how many carry alt text.
type ImageSummary struct {
	Count       int `json:"count"`
	WithAltText int `json:"withAltText"`
}

// NavigationSummary describes the main navigation and reachable contact info.
type NavigationSummary struct {
	LinkCount      int  `json:"linkCount"`
	HasContactInfo bool `json:"hasContactInfo"`
}

// AboveFold summarizes what a visitor sees before scrolling.
type AboveFold struct {
	MainHeadline string `json:"mainHeadline"`
	Subheadline  string `json:"subheadline"`
	HasCTA       bool   `json:"hasCta"`
	HasImage     bool   `json:"hasImage"`
	HasVideo     bool   `json:"hasVideo"`
}

// SectionSummary inventories one page section by its heading and contents.
type SectionSummary struct {
	Heading  string `json:"heading"`
	HasForm  bool   `json:"hasForm"`
	HasCTA   bool   `json:"hasCta"`
	HasImage bool   `json:"hasImage"`
	HasVideo bool   `json:"hasVideo"`
}

// Generator produces a raw audit payload for a snapshot. The payload is
// untrusted model output; callers repair it before use.
type Generator interface {
	Generate(ctx context.Context, snap *Snapshot) ([]byte, error)
}

// HistoryStore persists audit documents, most recent first.
type HistoryStore interface {
	Save(doc Document) error
	Update(doc Document) error
	Get(id string) (*Document, error)
	List() ([]Document, error)
	Delete(id string) error
	Clear() error
}
