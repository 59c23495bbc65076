package pdfeval

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"github.com/ScriptRock/pdfeval/internal/encoding"
)

// maxRefChain bounds chains of references pointing at references.
const maxRefChain = 32

// Resolve follows indirect references until obj is a direct object.
// A nil xref leaves references unresolved.
func Resolve(x XRef, obj Object) (Object, error) {
	for i := 0; i < maxRefChain; i++ {
		ref, ok := obj.(Ref)
		if !ok || x == nil {
			return obj, nil
		}
		var err error
		obj, err = x.Fetch(ref)
		if err != nil {
			return nil, err
		}
	}
	return nil, Errorf("reference chain too long: %w", ErrCircularReference)
}

// GetDict resolves obj and returns it as a dictionary. The dictionary of a
// stream is accepted as well. A null object yields (nil, nil).
func GetDict(x XRef, obj Object) (*Dict, error) {
	obj, err := Resolve(x, obj)
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case nil:
		return nil, nil
	case *Dict:
		return obj, nil
	case *Stream:
		return obj.Dict, nil
	default:
		return nil, Errorf("expected dictionary but got %T", obj)
	}
}

// GetStream resolves obj and returns it as a stream. A null object yields
// (nil, nil).
func GetStream(x XRef, obj Object) (*Stream, error) {
	obj, err := Resolve(x, obj)
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case nil:
		return nil, nil
	case *Stream:
		return obj, nil
	default:
		return nil, Errorf("expected stream but got %T", obj)
	}
}

// GetArray resolves obj and returns it as an array.
func GetArray(x XRef, obj Object) (Array, error) {
	obj, err := Resolve(x, obj)
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case nil:
		return nil, nil
	case Array:
		return obj, nil
	default:
		return nil, Errorf("expected array but got %T", obj)
	}
}

// GetName resolves obj and returns it as a name.
func GetName(x XRef, obj Object) (Name, error) {
	obj, err := Resolve(x, obj)
	if err != nil {
		return "", err
	}
	switch obj := obj.(type) {
	case nil:
		return "", nil
	case Name:
		return obj, nil
	default:
		return "", Errorf("expected name but got %T", obj)
	}
}

// GetNumber resolves obj and returns it as a float64.
func GetNumber(x XRef, obj Object) (float64, error) {
	obj, err := Resolve(x, obj)
	if err != nil {
		return 0, err
	}
	switch obj := obj.(type) {
	case nil:
		return 0, nil
	case int64:
		return float64(obj), nil
	case float64:
		return obj, nil
	default:
		return 0, Errorf("expected number but got %T", obj)
	}
}

// GetInt resolves obj and returns it as an integer, truncating reals.
func GetInt(x XRef, obj Object) (int, error) {
	f, err := GetNumber(x, obj)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
		return 0, Errorf("integer out of range: %v", f)
	}
	return int(f), nil
}

// GetBool resolves obj and returns it as a boolean.
func GetBool(x XRef, obj Object) (bool, error) {
	obj, err := Resolve(x, obj)
	if err != nil {
		return false, err
	}
	switch obj := obj.(type) {
	case nil:
		return false, nil
	case bool:
		return obj, nil
	default:
		return false, Errorf("expected boolean but got %T", obj)
	}
}

// GetNumbers resolves an array of numbers.
func GetNumbers(x XRef, obj Object) ([]float64, error) {
	a, err := GetArray(x, obj)
	if err != nil || a == nil {
		return nil, err
	}
	res := make([]float64, len(a))
	for i, v := range a {
		if res[i], err = GetNumber(x, v); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// GetMatrix resolves a six-element array into a matrix. It returns ok ==
// false when obj is absent or malformed.
func GetMatrix(x XRef, obj Object) (m matrix.Matrix, ok bool) {
	nums, err := GetNumbers(x, obj)
	if err != nil || len(nums) != 6 {
		return matrix.Identity, false
	}
	copy(m[:], nums)
	return m, true
}

// GetRect resolves a four-element array into a normalized rectangle.
func GetRect(x XRef, obj Object) (r rect.Rect, ok bool) {
	nums, err := GetNumbers(x, obj)
	if err != nil || len(nums) != 4 {
		return rect.Rect{}, false
	}
	r = rect.Rect{
		LLx: math.Min(nums[0], nums[2]),
		LLy: math.Min(nums[1], nums[3]),
		URx: math.Max(nums[0], nums[2]),
		URy: math.Max(nums[1], nums[3]),
	}
	return r, true
}

// Number converts a direct numeric object to float64.
func Number(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// Text returns s interpreted as a PDF text string and converted to UTF-8.
func Text(s string) string {
	if encoding.IsUTF16(s) {
		return encoding.UTF16Decode(s[2:])
	}
	if encoding.IsPDFDocEncoded(s) {
		return encoding.PDFDocDecode(s)
	}
	return s
}
