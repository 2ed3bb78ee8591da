package optics

import "fmt"

type Parity string

const (
	ModesOff  Parity = "off"
	ModesEven Parity = "even"
	ModesOdd  Parity = "odd"
	ModesX    Parity = "x"
	ModesY    Parity = "y"
)

// ModeBasis selects the Hermite-Gauss modes a solver should include.
type ModeBasis struct {
	Parity   Parity
	MaxOrder int
}

func ParseParity(s string) (Parity, error) {
	switch p := Parity(s); p {
	case "", ModesOff:
		return ModesOff, nil
	case ModesEven, ModesOdd, ModesX, ModesY:
		return p, nil
	default:
		return "", Configf("modes.parity", "unknown parity %q", s)
	}
}

// Indices enumerates the HG (n, m) pairs with n+m <= MaxOrder allowed by
// the parity. An off basis holds only the fundamental mode.
func (b ModeBasis) Indices() [][2]int {
	if b.Parity == ModesOff || b.Parity == "" {
		return [][2]int{{0, 0}}
	}
	var out [][2]int
	for order := 0; order <= b.MaxOrder; order++ {
		for n := order; n >= 0; n-- {
			m := order - n
			if b.allows(n, m) {
				out = append(out, [2]int{n, m})
			}
		}
	}
	return out
}

func (b ModeBasis) allows(n, m int) bool {
	switch b.Parity {
	case ModesEven:
		return n%2 == 0 && m%2 == 0
	case ModesOdd:
		return (n == 0 || n%2 == 1) && (m == 0 || m%2 == 1)
	case ModesX:
		return m == 0
	case ModesY:
		return n == 0
	}
	return n == 0 && m == 0
}

func (b ModeBasis) String() string {
	if b.Parity == ModesOff || b.Parity == "" {
		return "off"
	}
	return fmt.Sprintf("%s up to order %d", b.Parity, b.MaxOrder)
}
