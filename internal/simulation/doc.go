// Package simulation 提供多节点调查的回环模拟网络
//
// 所有节点运行在同一进程内，共享一个 mock 时钟。消息经 codec 编码后
// 进入全局 FIFO 队列，Crank 逐条解码投递，行为与真实线上传输一致：
// 投递异步于发送，且每条消息都经过完整的编解码。
//
// 使用示例：
//
//	sim := simulation.New(5 * time.Second)
//	a, _ := sim.AddNode(simulation.NodeOptions{})
//	b, _ := sim.AddNode(simulation.NodeOptions{})
//	sim.SetQuorum(a.ID())
//	_ = sim.AddConnection(a.ID(), b.ID())
//
//	_ = a.Manager.SurveyTopology(b.ID(), time.Minute)
//	sim.CrankForAtLeast(15 * time.Second)
//	res := a.Manager.Result()
package simulation
