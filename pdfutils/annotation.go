package pdfutils

type Kind string

const (
	Text  Kind = "text"
	Image Kind = "image"
)

type Role string

const (
	Plain        Role = "plain"
	Comment      Role = "comment"
	Name         Role = "name"
	Position     Role = "position"
	AcademicRank Role = "academic_rank"
	OrgRole      Role = "org_role"
	Timestamp    Role = "timestamp"
)

var knownRoles = map[Role]bool{
	Plain:        true,
	Comment:      true,
	Name:         true,
	Position:     true,
	AcademicRank: true,
	OrgRole:      true,
	Timestamp:    true,
}

type Weight int

const (
	Regular Weight = iota
	Bold
)

func (w Weight) String() string {
	if w == Bold {
		return "bold"
	}
	return "regular"
}

var roleWeights = map[Role]Weight{
	Name:    Bold,
	OrgRole: Bold,
}

// WeightForRole returns the font weight a text role is rendered with.
func WeightForRole(r Role) Weight {
	if w, ok := roleWeights[r]; ok {
		return w
	}
	return Regular
}

// Component is one placeable element of an annotation: rendered text or a
// caller-supplied image.
type Component struct {
	Kind      Kind
	Content   string
	Role      Role
	Color     RGB
	Weight    Weight
	FontSize  int
	SourceKey string
	Height    int
}

// AnnotationRequest describes everything placed at one anchor by one caller.
// A zero Width/Height pair selects top-left anchoring; a positive pair
// selects center-box anchoring.
type AnnotationRequest struct {
	Page         int
	X            int
	Y            int
	Width        int
	Height       int
	Kind         Kind
	Components   []Component
	Structured   bool
	CenterOnPage bool
}

func (r *AnnotationRequest) CenterBox() bool {
	return r.Width > 0 && r.Height > 0
}

type ByKind []*AnnotationRequest

func (a ByKind) Len() int           { return len(a) }
func (a ByKind) Less(i, j int) bool { return kindRank(a[i].Kind) < kindRank(a[j].Kind) }
func (a ByKind) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }

func kindRank(k Kind) int {
	if k == Text {
		return 0
	}
	return 1
}
