package storefront

import (
	"sync"
	"time"
)

// リサイズ連打をまとめる待ち時間
const ResizeDebounce = 250 * time.Millisecond

// Carouselはクロスセル欄の1枚ずつ送るカーソル。
// 幅は動かすたびに測り直す。
type Carousel struct {
	mu      sync.Mutex
	clock   Clock
	measure func() float64

	count  int
	index  int
	offset float64

	resizeTimer Timer
}

// measureは先頭アイテムの幅（margin込み）を返す
func NewCarousel(count int, measure func() float64, clock Clock) *Carousel {
	if count < 0 {
		count = 0
	}
	return &Carousel{clock: clock, measure: measure, count: count}
}

func (c *Carousel) maxIndex() int {
	if c.count <= 1 {
		return 0
	}
	return c.count - 1
}

func (c *Carousel) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index >= c.maxIndex() {
		return false
	}
	c.index++
	c.render()
	return true
}

func (c *Carousel) Prev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index <= 0 {
		return false
	}
	c.index--
	c.render()
	return true
}

// Resizeは最後の呼び出しから250ms後に先頭へ戻す
func (c *Carousel) Resize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
	}
	c.resizeTimer = c.clock.AfterFunc(ResizeDebounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.resizeTimer = nil
		c.index = 0
		c.render()
	})
}

// SetCountは断片の差し替えで中身が変わったとき
func (c *Carousel) SetCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 0 {
		n = 0
	}
	c.count = n
	c.index = 0
	c.render()
}

// Stopは保留中のリサイズを捨てる
func (c *Carousel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
		c.resizeTimer = nil
	}
}

func (c *Carousel) render() {
	width := 0.0
	if c.measure != nil {
		width = c.measure()
	}
	c.offset = -float64(c.index) * width
}

func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Offsetはtrackのtranslate量（px）
func (c *Carousel) Offset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

func (c *Carousel) PrevDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index <= 0
}

func (c *Carousel) NextDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index >= c.maxIndex()
}
