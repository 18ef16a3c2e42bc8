package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/card-smash/internal/logger"
	"github.com/palemoky/card-smash/internal/sound"
	"github.com/palemoky/card-smash/internal/ui"
)

func main() {
	serverURL := flag.String("server", "http://localhost:6464", "服务器地址")
	window := flag.Duration("window", ui.DefaultWindow, "拍桌窗口（仅用于倒计时显示）")
	soundDir := flag.String("sounds", sound.DefaultDir, "音效目录")
	mute := flag.Bool("mute", false, "关闭音效")
	flag.Parse()

	// 界面占用终端，日志只写文件
	if err := logger.Init(""); err != nil {
		log.Printf("⚠️ 日志文件初始化失败: %v", err)
	}
	defer logger.Close()

	var sp ui.SoundPlayer
	if !*mute {
		sm := sound.NewManager(*soundDir)
		if err := sm.Init(); err != nil {
			logger.LogError("音效初始化失败: %v", err)
		}
		defer sm.Close()
		sp = sm
	}

	model := ui.NewModel(*serverURL, *window, sp)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
