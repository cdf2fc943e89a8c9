package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/tsuki530/2023-tieba-bk/config"
	"github.com/tsuki530/2023-tieba-bk/internal/database"
	"github.com/tsuki530/2023-tieba-bk/internal/route"
)

func main() {
	// 1. 加载配置
	config.MustLoad("config.yaml")

	// 2. 初始化数据库
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("[tieba-bk] 数据库初始化失败: %v", err)
	}

	// 3. 设置路由
	r := route.SetupRouter()

	// 4. 启动服务
	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  config.Conf.Server.ReadTimeout,
		WriteTimeout: config.Conf.Server.WriteTimeout,
	}

	log.Printf("[tieba-bk] 服务启动于 %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[tieba-bk] 服务启动失败: %v", err)
	}
}
