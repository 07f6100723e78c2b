package render

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Target 输出目标：展示层中由固定标识定位的一块区域
type Target interface {
	ID() string
	// SetContent 用 content 整体替换原有内容
	SetContent(content string)
}

// Region 内存中的输出区域，页面渲染时读取
type Region struct {
	id        string
	mu        sync.RWMutex
	content   string
	updatedAt time.Time
	writes    int
}

// NewRegion 创建输出区域
func NewRegion(id string) *Region {
	return &Region{id: id}
}

func (r *Region) ID() string { return r.id }

func (r *Region) SetContent(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
	r.updatedAt = time.Now()
	r.writes++
}

// Content 当前内容
func (r *Region) Content() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}

// UpdatedAt 最近一次写入时间，从未写入时为零值
func (r *Region) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updatedAt
}

// Writes 累计写入次数
func (r *Region) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

// WriterTarget 把内容写到 io.Writer，命令行模式下指向 stdout
type WriterTarget struct {
	id string
	w  io.Writer
	mu sync.Mutex
}

func NewWriterTarget(id string, w io.Writer) *WriterTarget {
	return &WriterTarget{id: id, w: w}
}

func (t *WriterTarget) ID() string { return t.id }

func (t *WriterTarget) SetContent(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, content)
}
