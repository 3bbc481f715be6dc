// internal/model/core/color.go
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned when a colour string cannot be resolved
var ErrInvalidColor = errors.New("invalid color")

// Color is an RGBA colour with channels in the 0..1 range
type Color struct {
	R float32 `json:"red"`
	G float32 `json:"green"`
	B float32 `json:"blue"`
	A float32 `json:"alpha"`
}

// NewColor builds an opaque colour from 0..1 channels.
func NewColor(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// WithAlpha returns a copy of the colour with the given alpha.
func (c Color) WithAlpha(alpha float32) Color {
	c.A = alpha
	return c
}

// Valid reports whether every channel lies in 0..1.
func (c Color) Valid() bool {
	for _, v := range []float32{c.R, c.G, c.B, c.A} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// CSS renders the colour as an rgba() string.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)",
		toByte(c.R), toByte(c.G), toByte(c.B),
		strconv.FormatFloat(float64(c.A), 'f', -1, 32),
	)
}

// MustParseColor is ParseColor for package-level palettes; it panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseColor resolves a CSS colour name ("skyblue") or a hex string
// ("#87ceeb", "#87ceeb80", "#fff").
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Color{}, fmt.Errorf("%w: empty string", ErrInvalidColor)
	}

	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}

	rgba, ok := colornames.Map[s]
	if !ok {
		return Color{}, fmt.Errorf("%w: unknown name %q", ErrInvalidColor, s)
	}
	return Color{
		R: float32(rgba.R) / 255,
		G: float32(rgba.G) / 255,
		B: float32(rgba.B) / 255,
		A: float32(rgba.A) / 255,
	}, nil
}

func parseHex(h string) (Color, error) {
	// expand #rgb and #rgba shorthand
	if len(h) == 3 || len(h) == 4 {
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	}
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("%w: bad hex length %q", ErrInvalidColor, h)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}

	alpha := uint64(0xff)
	if len(h) == 8 {
		alpha = v & 0xff
		v >>= 8
	}
	return Color{
		R: float32((v>>16)&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32(v&0xff) / 255,
		A: float32(alpha) / 255,
	}, nil
}

// UnmarshalJSON accepts a colour string or a {red,green,blue,alpha} object.
// A missing alpha in object form means opaque; channels must lie in 0..1.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseColor(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	var obj struct {
		R float32  `json:"red"`
		G float32  `json:"green"`
		B float32  `json:"blue"`
		A *float32 `json:"alpha"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	parsed := Color{R: obj.R, G: obj.G, B: obj.B, A: 1}
	if obj.A != nil {
		parsed.A = *obj.A
	}
	if !parsed.Valid() {
		return fmt.Errorf("%w: channel outside 0..1 in %s", ErrInvalidColor, data)
	}
	*c = parsed
	return nil
}

func toByte(v float32) int {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return int(v*255 + 0.5)
	}
}
