package scene

import (
	"fmt"

	"github.com/chazu/chitin/pkg/collide"
)

// Severity indicates whether a validation finding blocks further use of
// the scene or is merely advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks simulation
	SeverityWarning                 // advisory
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Stable finding codes. Hosts switch on these rather than on message
// text.
const (
	CodeNonPositiveRadius     = "nonpositive-radius"
	CodeNonPositiveHalfLength = "nonpositive-half-length"
	CodeNegativeScale         = "negative-scale"
	CodeZeroScale             = "zero-scale"
	CodeEmptySurfaceRef       = "empty-surface-ref"
	CodeUnknownSurfaceRef     = "unknown-surface-ref"
	CodeDuplicateName         = "duplicate-collider-name"
)

// Finding describes a single validation finding against a scene.
type Finding struct {
	Code     string // stable machine-readable code
	Name     string // collider name, empty for scene-level findings
	Message  string // human-readable description
	Severity Severity
}

func (f Finding) String() string {
	if f.Name == "" {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Name, f.Message)
}

// ValidationResult bundles findings separated by severity.
type ValidationResult struct {
	Errors   []Finding
	Warnings []Finding
}

// Blocking reports whether the scene has findings that should stop a
// host from simulating it.
func (r ValidationResult) Blocking() bool {
	return len(r.Errors) > 0
}

// Validate runs every validation check against an evaluated scene and
// partitions the findings by severity. Validation is read-only and
// never mutates the scene.
func Validate(sc *Scene) ValidationResult {
	var findings []Finding
	findings = append(findings, checkShapes(sc)...)
	findings = append(findings, checkScales(sc)...)
	findings = append(findings, checkNames(sc)...)

	var result ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, f)
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}

// checkShapes validates the geometric parameters of each collider's
// shape. A capsule with both a bad radius and a bad half-length yields
// two findings.
func checkShapes(sc *Scene) []Finding {
	var findings []Finding
	for _, p := range sc.Colliders {
		switch s := p.Collider.Shape.(type) {
		case collide.Sphere:
			if s.Radius <= 0 {
				findings = append(findings, Finding{
					Code:     CodeNonPositiveRadius,
					Name:     p.Name,
					Message:  fmt.Sprintf("sphere radius must be positive, got %g", s.Radius),
					Severity: SeverityError,
				})
			}
		case collide.Capsule:
			if s.Radius <= 0 {
				findings = append(findings, Finding{
					Code:     CodeNonPositiveRadius,
					Name:     p.Name,
					Message:  fmt.Sprintf("capsule radius must be positive, got %g", s.Radius),
					Severity: SeverityError,
				})
			}
			if s.HalfLength <= 0 {
				findings = append(findings, Finding{
					Code:     CodeNonPositiveHalfLength,
					Name:     p.Name,
					Message:  fmt.Sprintf("capsule half-length must be positive, got %g", s.HalfLength),
					Severity: SeverityError,
				})
			}
		case collide.Surface:
			if s.Ref == "" {
				findings = append(findings, Finding{
					Code:     CodeEmptySurfaceRef,
					Name:     p.Name,
					Message:  "surface collider has an empty field reference",
					Severity: SeverityError,
				})
				continue
			}
			if sc.Fields == nil {
				continue
			}
			if _, ok := sc.Fields.Get(s.Ref); !ok {
				findings = append(findings, Finding{
					Code:     CodeUnknownSurfaceRef,
					Name:     p.Name,
					Message:  fmt.Sprintf("surface references unregistered field %q", string(s.Ref)),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return findings
}

// checkScales validates collider scale factors. A negative scale
// inverts geometry and blocks; a zero scale collapses it to a point,
// which is suspicious but well-defined.
func checkScales(sc *Scene) []Finding {
	var findings []Finding
	for _, p := range sc.Colliders {
		switch {
		case p.Collider.Scale < 0:
			findings = append(findings, Finding{
				Code:     CodeNegativeScale,
				Name:     p.Name,
				Message:  fmt.Sprintf("scale must not be negative, got %g", p.Collider.Scale),
				Severity: SeverityError,
			})
		case p.Collider.Scale == 0:
			findings = append(findings, Finding{
				Code:     CodeZeroScale,
				Name:     p.Name,
				Message:  "scale is zero, collider collapses to a point",
				Severity: SeverityWarning,
			})
		}
	}
	return findings
}

// checkNames flags collider names used more than once. One finding per
// duplicated name, emitted in first-occurrence order.
func checkNames(sc *Scene) []Finding {
	counts := make(map[string]int)
	for _, p := range sc.Colliders {
		counts[p.Name]++
	}

	var findings []Finding
	emitted := make(map[string]bool)
	for _, p := range sc.Colliders {
		if counts[p.Name] < 2 || emitted[p.Name] {
			continue
		}
		emitted[p.Name] = true
		findings = append(findings, Finding{
			Code:     CodeDuplicateName,
			Name:     p.Name,
			Message:  fmt.Sprintf("collider name %q used %d times", p.Name, counts[p.Name]),
			Severity: SeverityError,
		})
	}
	return findings
}
