package matrix

import "sync"

// FontCache memoizes character widths so text is measured without
// querying the face on every frame.
type FontCache struct {
	font *Font

	mu       sync.Mutex
	widths   map[rune]int
	measured int
}

// NewFontCache creates a width cache for f
func NewFontCache(f *Font) *FontCache {
	return &FontCache{
		font:   f,
		widths: make(map[rune]int, 128),
	}
}

// Font returns the cached font
func (c *FontCache) Font() *Font { return c.font }

// Baseline returns the font baseline
func (c *FontCache) Baseline() int { return c.font.baseline }

// Height returns the font line height
func (c *FontCache) Height() int { return c.font.height }

// CharacterWidth returns the width of r, measuring it on first use
func (c *FontCache) CharacterWidth(r rune) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.widthLocked(r)
}

func (c *FontCache) widthLocked(r rune) int {
	if w, ok := c.widths[r]; ok {
		return w
	}
	w := c.font.CharacterWidth(r)
	c.widths[r] = w
	c.measured++
	return w
}

// TextWidth returns the pixel width of s
func (c *FontCache) TextWidth(s string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, r := range s {
		total += c.widthLocked(r)
	}
	return total
}

// Measured returns how many distinct characters have been measured
func (c *FontCache) Measured() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.measured
}
