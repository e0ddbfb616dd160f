package scene

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chitin/pkg/collide"
	"github.com/chazu/chitin/pkg/field"
	"github.com/chazu/chitin/pkg/field/sdfx"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword arguments after preprocessing.
const kwPrefix = "__kw_"

// preprocessSource rewrites scene source before it reaches zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword". Keywords become
//     tagged string literals so builtins can split keyword from
//     positional arguments without registering global symbols.
//
//  2. Kebab-case to underscore: sdf-box -> sdf_box. zygomys reads a
//     bare hyphen as subtraction, so only hyphens sitting between an
//     identifier character and a letter convert; minus stays minus.
//
//  3. ; line comments -> // line comments, the form zygomys accepts.
//
// String literals (double-quoted and backtick) pass through untouched,
// as does the := assignment operator.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Copy double-quoted string literals verbatim.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Copy backtick-quoted string literals verbatim.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Rewrite ; comments (and ;; style) as // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Tag :keyword tokens, leaving := alone.
		if b[i] == ':' && i+1 < len(b) {
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Convert kebab identifiers; a digit after the hyphen means
		// subtraction and is left alone.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 carries an mgl64 vector between builtins.
type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X(), v.vec.Y(), v.vec.Z())
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpShape carries a collider shape from the shape constructors to
// (collider ...).
type sexpShape struct {
	shape collide.Shape
}

func (w *sexpShape) SexpString(ps *zygo.PrintState) string {
	switch s := w.shape.(type) {
	case collide.Sphere:
		return fmt.Sprintf("(sphere %g)", s.Radius)
	case collide.Capsule:
		return fmt.Sprintf("(capsule %g %g)", s.Radius, s.HalfLength)
	case collide.Surface:
		return fmt.Sprintf("(surface %q)", string(s.Ref))
	}
	return fmt.Sprintf("(%s)", w.shape.Kind())
}
func (w *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpSolid carries a CSG solid between field constructors, combinators
// and (deffield ...).
type sexpSolid struct {
	solid *sdfx.Solid
}

func (w *sexpSolid) SexpString(ps *zygo.PrintState) string {
	lo, hi := w.solid.Bounds()
	size := hi.Sub(lo)
	return fmt.Sprintf("(solid %.3gx%.3gx%.3g)", size.X(), size.Y(), size.Z())
}
func (w *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks whether a Sexp is a preprocessed keyword string,
// returning the keyword name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs is a parsed mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Trailing keyword with no value acts as a nil flag.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toShape(s zygo.Sexp) (collide.Shape, error) {
	if w, ok := s.(*sexpShape); ok {
		return w.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

func toSolid(s zygo.Sexp) (*sdfx.Solid, error) {
	if w, ok := s.(*sexpSolid); ok {
		return w.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL into a zygomys environment.
// The builtins populate sc during evaluation. Source must have passed
// through preprocessSource so keyword tokens arrive as tagged strings
// and kebab-case names as their registered underscore forms; error
// messages use the kebab spelling the scene author wrote.
func registerBuiltins(env *zygo.Zlisp, sc *Scene) {

	// -----------------------------------------------------------------------
	// (vec3 1 2.5 -3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: mgl64.Vec3{x, y, z}}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere radius)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sphere requires a radius, got %d arguments", len(args))
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		return &sexpShape{shape: collide.Sphere{Radius: r}}, nil
	})

	// -----------------------------------------------------------------------
	// (capsule radius half-length)
	// -----------------------------------------------------------------------
	env.AddFunction("capsule", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("capsule requires a radius and a half-length, got %d arguments", len(args))
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("capsule: radius: %w", err)
		}
		hl, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("capsule: half-length: %w", err)
		}
		return &sexpShape{shape: collide.Capsule{Radius: r, HalfLength: hl}}, nil
	})

	// -----------------------------------------------------------------------
	// (surface "ref")
	// -----------------------------------------------------------------------
	env.AddFunction("surface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("surface requires a field reference, got %d arguments", len(args))
		}
		ref, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("surface: ref: %w", err)
		}
		return &sexpShape{shape: collide.Surface{Ref: field.Ref(ref)}}, nil
	})

	// -----------------------------------------------------------------------
	// (sdf-box x y z), full side lengths, centered at the origin
	// -----------------------------------------------------------------------
	env.AddFunction("sdf_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("sdf-box requires x, y and z side lengths, got %d arguments", len(args))
		}
		var dims [3]float64
		for i, label := range [3]string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sdf-box: %s: %w", label, err)
			}
			dims[i] = f
		}
		s, err := sdfx.Box(dims[0], dims[1], dims[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sdf-box: %w", err)
		}
		return &sexpSolid{solid: s}, nil
	})

	// -----------------------------------------------------------------------
	// (sdf-sphere radius)
	// -----------------------------------------------------------------------
	env.AddFunction("sdf_sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sdf-sphere requires a radius, got %d arguments", len(args))
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sdf-sphere: radius: %w", err)
		}
		s, err := sdfx.Sphere(r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sdf-sphere: %w", err)
		}
		return &sexpSolid{solid: s}, nil
	})

	// -----------------------------------------------------------------------
	// (sdf-cylinder height radius), axis along local Z
	// -----------------------------------------------------------------------
	env.AddFunction("sdf_cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("sdf-cylinder requires a height and a radius, got %d arguments", len(args))
		}
		h, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sdf-cylinder: height: %w", err)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sdf-cylinder: radius: %w", err)
		}
		s, err := sdfx.Cylinder(h, r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sdf-cylinder: %w", err)
		}
		return &sexpSolid{solid: s}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("union requires at least 2 solids, got %d arguments", len(args))
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("union: solid 1: %w", err)
		}
		for i := 1; i < len(args); i++ {
			next, err := toSolid(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: solid %d: %w", i+1, err)
			}
			acc = sdfx.Union(acc, next)
		}
		return &sexpSolid{solid: acc}, nil
	})

	// -----------------------------------------------------------------------
	// (difference a b)
	// -----------------------------------------------------------------------
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("difference requires exactly 2 solids, got %d arguments", len(args))
		}
		a, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: solid 1: %w", err)
		}
		b, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: solid 2: %w", err)
		}
		return &sexpSolid{solid: sdfx.Difference(a, b)}, nil
	})

	// -----------------------------------------------------------------------
	// (intersect a b)
	// -----------------------------------------------------------------------
	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("intersect requires exactly 2 solids, got %d arguments", len(args))
		}
		a, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: solid 1: %w", err)
		}
		b, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: solid 2: %w", err)
		}
		return &sexpSolid{solid: sdfx.Intersection(a, b)}, nil
	})

	// -----------------------------------------------------------------------
	// (translate solid (vec3 x y z))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a solid and a vec3, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: solid: %w", err)
		}
		v, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		return &sexpSolid{solid: sdfx.Translate(s, v.X(), v.Y(), v.Z())}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate-x solid degrees), likewise rotate-y and rotate-z
	// -----------------------------------------------------------------------
	rotate := func(builtin string, apply func(s *sdfx.Solid, deg float64) *sdfx.Solid) {
		registered := strings.ReplaceAll(builtin, "-", "_")
		env.AddFunction(registered, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a solid and an angle in degrees, got %d arguments", builtin, len(args))
			}
			s, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: solid: %w", builtin, err)
			}
			deg, err := toFloat64(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: degrees: %w", builtin, err)
			}
			return &sexpSolid{solid: apply(s, deg)}, nil
		})
	}
	rotate("rotate-x", func(s *sdfx.Solid, deg float64) *sdfx.Solid { return sdfx.Rotate(s, deg, 0, 0) })
	rotate("rotate-y", func(s *sdfx.Solid, deg float64) *sdfx.Solid { return sdfx.Rotate(s, 0, deg, 0) })
	rotate("rotate-z", func(s *sdfx.Solid, deg float64) *sdfx.Solid { return sdfx.Rotate(s, 0, 0, deg) })

	// -----------------------------------------------------------------------
	// (deffield "name" solid)
	// -----------------------------------------------------------------------
	env.AddFunction("deffield", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("deffield requires a name and a solid, got %d arguments", len(args))
		}
		ref, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deffield: name: %w", err)
		}
		solid, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deffield: solid: %w", err)
		}
		sc.Fields.Put(field.Ref(ref), solid)
		return &zygo.SexpStr{S: ref}, nil
	})

	// -----------------------------------------------------------------------
	// (collider "name" shape :at (vec3 ...) :rotate-z 90 :scale 2)
	// -----------------------------------------------------------------------
	env.AddFunction("collider", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("collider requires a name and a shape")
		}

		colName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("collider: name: %w", err)
		}
		shape, err := toShape(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("collider: shape: %w", err)
		}

		c := collide.Collider{Shape: shape, Scale: 1}
		if v, ok := pa.kw["scale"]; ok {
			s, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: scale: %w", err)
			}
			c.Scale = s
		}

		translation := mgl64.Vec3{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: at: %w", err)
			}
			translation = vec
		}

		rotation := mgl64.QuatIdent()
		if v, ok := pa.kw["rotate-z"]; ok {
			deg, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: rotate-z: %w", err)
			}
			rotation = mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 0, 1})
		}

		sc.Colliders = append(sc.Colliders, Placed{
			Name:     colName,
			Collider: c,
			Pose:     collide.NewPose(translation, rotation),
		})

		return &zygo.SexpStr{S: colName}, nil
	})
}
