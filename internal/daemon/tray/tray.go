package tray

import (
	"github.com/energye/systray"
)

// Options configures the native tray.
type Options struct {
	Icon    []byte
	Title   string
	Tooltip string
	Items   []Item
	// OnClick runs on a left click of the icon.
	OnClick func()
	// Dispatch moves menu actions off the tray goroutine. Nil runs them inline.
	Dispatch func(func())
	// OnReady runs once the tray is up.
	OnReady func()
	// OnExit runs after Quit, before Run returns.
	OnExit func()
}

// Run starts the system tray. This blocks the calling goroutine (must be main).
func Run(opts Options) {
	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}

	systray.Run(func() {
		systray.SetIcon(opts.Icon)
		if opts.Title != "" {
			systray.SetTitle(opts.Title)
		}
		tooltip := opts.Tooltip
		if tooltip == "" {
			tooltip = DefaultTooltip
		}
		systray.SetTooltip(tooltip)

		for _, item := range opts.Items {
			if item.Separator {
				systray.AddSeparator()
				continue
			}
			action := item.Action
			systray.AddMenuItem(item.Title, item.Tooltip).Click(func() {
				dispatch(action)
			})
		}

		if opts.OnClick != nil {
			systray.SetOnClick(func(systray.IMenu) {
				dispatch(opts.OnClick)
			})
		}
		systray.SetOnRClick(func(menu systray.IMenu) {
			_ = menu.ShowMenu()
		})

		if opts.OnReady != nil {
			opts.OnReady()
		}
	}, func() {
		if opts.OnExit != nil {
			opts.OnExit()
		}
	})
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}
