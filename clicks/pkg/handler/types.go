package handler

import (
	"context"
	"time"

	"clickboard/clicks/pkg/render"
)

// Runner 执行一次拉取渲染并提供状态快照
type Runner interface {
	// Run 加入正在进行的拉取，没有则发起一次
	Run(ctx context.Context)
	// Rerun 取消正在进行的拉取并重新发起
	Rerun(ctx context.Context)
	Status() render.Status
}

// ContentView 输出区域当前内容
type ContentView struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
