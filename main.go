package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/rtsgrid/pkg/app"
	"github.com/decker502/rtsgrid/pkg/config"
	"github.com/decker502/rtsgrid/pkg/embedded"
)

func main() {
	configPath := flag.String("config", "", "grid config YAML file (default: embedded data/grid.yaml)")
	preset := flag.String("preset", "", "embedded grid preset name")
	listPresets := flag.Bool("list-presets", false, "list embedded grid presets and exit")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	flag.Parse()

	// 初始化嵌入资源
	embedded.Init(dataFS)

	if *listPresets {
		names, err := config.ListGridPresets()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	viewer, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		Preset:     *preset,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(viewer)

	// 退出时保存显示设置
	if err := viewer.Close(); err != nil {
		log.Printf("[Main] Failed to save settings: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
