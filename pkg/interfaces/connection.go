package interfaces

// Connection 定义连接状态的反向引用契约
//
// 流管理器与每条流状态只借用该引用，不拥有其生命周期；
// 管理器迁移到新连接上下文时逐条重绑。
type Connection interface {
	// ID 返回连接标识
	ID() string

	// OnAppIdleChanged 应用空闲状态翻转时的通知
	//
	// 由管理器在非控制流数量从有到无（或反之）时调用，
	// 用于驱动拥塞控制器的 app-idle 模式。
	OnAppIdleChanged(idle bool)
}
