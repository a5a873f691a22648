package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/kernel"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Mandrel Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: stepped-cylinder -> stepped_cylinder
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
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
		// Skip backtick-quoted string literals.
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
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
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

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
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

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_previous) and plain strings.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toSupport converts a support argument to a role reference. Datum plane
// keywords (:xy :yz :zx) name an origin plane, :previous names the top face
// of the most recent feature, and any other string is an explicit feature
// name.
func toSupport(s zygo.Sexp) (intent.RoleRef, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return intent.RoleRef{}, fmt.Errorf("expected support keyword or feature name: %w", err)
	}
	switch name {
	case "xy":
		return intent.BasePlane(kernel.PlaneXY), nil
	case "yz":
		return intent.BasePlane(kernel.PlaneYZ), nil
	case "zx":
		return intent.BasePlane(kernel.PlaneZX), nil
	case "previous":
		return intent.TopOfPrevious(), nil
	}
	if _, ok := isKW(s); ok {
		return intent.RoleRef{}, fmt.Errorf("invalid support %q, expected :xy, :yz, :zx, :previous or a feature name", name)
	}
	return intent.Feature(name), nil
}

// toDirection converts a direction keyword to an extrusion direction.
func toDirection(s zygo.Sexp) (intent.Direction, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected direction keyword (:outward, :inward, :symmetric): %w", err)
	}
	switch name {
	case "outward":
		return intent.DirectionOutward, nil
	case "inward":
		return intent.DirectionInward, nil
	case "symmetric":
		return intent.DirectionSymmetric, nil
	}
	return 0, fmt.Errorf("invalid direction %q, expected outward, inward, or symmetric", name)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the Mandrel DSL builtins into a zygomys
// environment. Feature builtins append to the provided intent in call order,
// which is also the construction order the planner sees.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, in *intent.Intent) {

	// -----------------------------------------------------------------------
	// (design "flange")
	// -----------------------------------------------------------------------
	env.AddFunction("design", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("design requires a name argument")
		}
		designName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("design: name: %w", err)
		}
		in.Name = designName
		return &zygo.SexpStr{S: designName}, nil
	})

	// -----------------------------------------------------------------------
	// (pad :name "base" :radius 30 :height 10 :at-x 0 :at-y 0
	//      :support :xy :direction :outward)
	// -----------------------------------------------------------------------
	env.AddFunction("pad", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := intent.PadSpec{
			Support:   intent.TopOfPrevious(),
			Direction: intent.DirectionOutward,
		}

		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pad: name: %w", err)
			}
			spec.Name = s
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pad: radius: %w", err)
			}
			spec.Radius = f
		}
		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pad: height: %w", err)
			}
			spec.Height = f
		}
		if v, ok := pa.kw["at-x"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pad: at-x: %w", err)
			}
			spec.CX = f
		}
		if v, ok := pa.kw["at-y"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pad: at-y: %w", err)
			}
			spec.CY = f
		}
		if v, ok := pa.kw["support"]; ok {
			ref, err := toSupport(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pad: support: %w", err)
			}
			spec.Support = ref
		}
		if v, ok := pa.kw["direction"]; ok {
			d, err := toDirection(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pad: direction: %w", err)
			}
			spec.Direction = d
		}

		in.Features = append(in.Features, spec)
		return &zygo.SexpStr{S: spec.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (pocket :name "bore" :radius 5 :depth 3 :through true
	//         :at-x 0 :at-y 0 :support :previous)
	// -----------------------------------------------------------------------
	env.AddFunction("pocket", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := intent.PocketSpec{Support: intent.TopOfPrevious()}

		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pocket: name: %w", err)
			}
			spec.Name = s
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pocket: radius: %w", err)
			}
			spec.Radius = f
		}
		if v, ok := pa.kw["depth"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pocket: depth: %w", err)
			}
			spec.Depth = f
		}
		if v, ok := pa.kw["through"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pocket: through: %w", err)
			}
			spec.Through = b
		}
		if v, ok := pa.kw["at-x"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pocket: at-x: %w", err)
			}
			spec.CX = f
		}
		if v, ok := pa.kw["at-y"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pocket: at-y: %w", err)
			}
			spec.CY = f
		}
		if v, ok := pa.kw["support"]; ok {
			ref, err := toSupport(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pocket: support: %w", err)
			}
			spec.Support = ref
		}

		in.Features = append(in.Features, spec)
		return &zygo.SexpStr{S: spec.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (revolve :name "rim" :profile-radius 4 :offset 26 :angle 360
	//          :support :previous)
	// -----------------------------------------------------------------------
	env.AddFunction("revolve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := intent.RevolveSpec{Angle: 360, Support: intent.TopOfPrevious()}

		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve: name: %w", err)
			}
			spec.Name = s
		}
		if v, ok := pa.kw["profile-radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve: profile-radius: %w", err)
			}
			spec.ProfileRadius = f
		}
		if v, ok := pa.kw["offset"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve: offset: %w", err)
			}
			spec.Offset = f
		}
		if v, ok := pa.kw["angle"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve: angle: %w", err)
			}
			spec.Angle = f
		}
		if v, ok := pa.kw["support"]; ok {
			ref, err := toSupport(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve: support: %w", err)
			}
			spec.Support = ref
		}

		in.Features = append(in.Features, spec)
		return &zygo.SexpStr{S: spec.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (fillet :name "round" :radius 2 :on "boss")
	// -----------------------------------------------------------------------
	env.AddFunction("fillet", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := intent.FilletSpec{Support: intent.TopOfPrevious()}

		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fillet: name: %w", err)
			}
			spec.Name = s
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fillet: radius: %w", err)
			}
			spec.Radius = f
		}
		if v, ok := pa.kw["on"]; ok {
			ref, err := toSupport(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fillet: on: %w", err)
			}
			spec.Support = ref
		}

		in.Features = append(in.Features, spec)
		return &zygo.SexpStr{S: spec.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (stepped-cylinder :name "flange" :base-radius 30 :base-height 10
	//                   :step-radius 20 :step-height 15 :hole-radius 5)
	//
	// Note: registered as "stepped_cylinder" because zygomys does not support
	// hyphens in identifiers. The preprocessor converts stepped-cylinder to
	// stepped_cylinder in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("stepped_cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := intent.SteppedCylinderSpec{}

		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stepped-cylinder: name: %w", err)
			}
			spec.Name = s
		}
		if v, ok := pa.kw["base-radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stepped-cylinder: base-radius: %w", err)
			}
			spec.BaseRadius = f
		}
		if v, ok := pa.kw["base-height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stepped-cylinder: base-height: %w", err)
			}
			spec.BaseHeight = f
		}
		if v, ok := pa.kw["step-radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stepped-cylinder: step-radius: %w", err)
			}
			spec.StepRadius = f
		}
		if v, ok := pa.kw["step-height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stepped-cylinder: step-height: %w", err)
			}
			spec.StepHeight = f
		}
		if v, ok := pa.kw["hole-radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stepped-cylinder: hole-radius: %w", err)
			}
			spec.ThroughHoleRadius = f
		}

		in.Features = append(in.Features, spec)
		return &zygo.SexpStr{S: spec.Name}, nil
	})
}
