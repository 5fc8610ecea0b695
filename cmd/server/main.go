package main

import (
	"fmt"
	"log"

	"github.com/Mieluoxxx/Aegis-Auth/internal/api"
	"github.com/Mieluoxxx/Aegis-Auth/internal/config"
	"github.com/Mieluoxxx/Aegis-Auth/internal/db"
)

const (
	// Version 项目版本
	Version = "0.1.0"
	// AppName 应用名称
	AppName = "Aegis-Auth"
)

func main() {
	log.Printf("=== %s v%s ===", AppName, Version)

	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ 加载配置失败: %v", err)
	}

	// 初始化数据库
	database, err := db.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("❌ 初始化数据库失败: %v", err)
	}
	defer db.CloseDatabase(database)

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(database); err != nil {
			log.Fatalf("❌ 数据库迁移失败: %v", err)
		}
	}

	// 配置路由
	router, err := api.SetupRouter(database, cfg)
	if err != nil {
		log.Fatalf("❌ 初始化服务失败: %v", err)
	}

	// 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("🚀 服务启动: http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("❌ 服务启动失败: %v", err)
	}
}
