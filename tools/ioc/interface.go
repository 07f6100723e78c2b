package ioc

import "fmt"

// Object 可注册到容器中的对象
type Object interface {
	Init() error
}

// Container 按名称注册对象，Init 时按注册顺序初始化
type Container interface {
	RegisterContainer(name string, obj Object)
	GetMapContainer(name string) any
	Names() []string
	Init() error
}

var Api Container = NewMapContainer("apiContainer")

type MapContainer struct {
	name    string
	order   []string
	storage map[string]Object
}

func NewMapContainer(name string) *MapContainer {
	return &MapContainer{name: name, storage: make(map[string]Object)}
}

// RegisterContainer 同名重复注册时覆盖对象，保持首次注册的顺序
func (m *MapContainer) RegisterContainer(name string, obj Object) {
	if _, ok := m.storage[name]; !ok {
		m.order = append(m.order, name)
	}
	m.storage[name] = obj
}

func (m *MapContainer) GetMapContainer(name string) any {
	obj, ok := m.storage[name]
	if !ok {
		return nil
	}
	return obj
}

func (m *MapContainer) Names() []string {
	return append([]string(nil), m.order...)
}

func (m *MapContainer) Init() error {
	for _, name := range m.order {
		if err := m.storage[name].Init(); err != nil {
			return fmt.Errorf("%s: init %s: %w", m.name, name, err)
		}
	}
	return nil
}
