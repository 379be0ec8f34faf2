// gridtui 终端版网格放置查看器
//
// 用法:
//
//	go run ./cmd/gridtui -config data/grid.yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/rtsgrid/pkg/config"
)

// tickInterval 建造进度的刷新间隔
const tickInterval = 100 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "grid config YAML path (built-in defaults when empty)")
	logPath := flag.String("log", "", "write logs to this file (discarded when empty)")
	flag.Parse()

	// 日志会破坏终端画面，只允许写入文件
	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	v, err := newViewer(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.GridFileConfig, error) {
	if path == "" {
		return config.DefaultGridFileConfig(), nil
	}
	cfg, err := config.LoadGridConfig(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[gridtui] Loaded grid config from %s", path)
	return cfg, nil
}

func run(v *viewer) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	redraw := func() {
		screen.Clear()
		v.draw(screen)
		screen.Show()
	}
	redraw()

	var lastButtons tcell.ButtonMask
	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !v.handleKey(ev.Key(), ev.Rune()) {
					return nil
				}
			case *tcell.EventMouse:
				// 按住拖动时只在按下的那一刻触发
				buttons := ev.Buttons()
				x, y := ev.Position()
				v.handleMouse(x, y, buttons&^lastButtons)
				lastButtons = buttons
			case *tcell.EventResize:
				screen.Sync()
			}
			redraw()

		case <-ticker.C:
			v.tick(tickInterval.Seconds())
			redraw()
		}
	}
}
