package storefront

import "sync"

type DrawerState string

const (
	DrawerClosed DrawerState = "closed"
	DrawerOpen   DrawerState = "open"
)

// Drawerはサイドカート本体の開閉
type Drawer struct {
	mu    sync.Mutex
	state DrawerState
}

func NewDrawer() *Drawer {
	return &Drawer{state: DrawerClosed}
}

func (d *Drawer) Open() {
	d.mu.Lock()
	d.state = DrawerOpen
	d.mu.Unlock()
}

func (d *Drawer) Close() {
	d.mu.Lock()
	d.state = DrawerClosed
	d.mu.Unlock()
}

func (d *Drawer) State() DrawerState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Drawer) IsOpen() bool {
	return d.State() == DrawerOpen
}
