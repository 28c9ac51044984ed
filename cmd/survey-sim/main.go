// Package main 提供 survey-sim 命令行入口
//
// survey-sim 在进程内回环网络上运行拓扑调查场景，便于观察请求泛洪、
// 白名单应答与节流的效果，也可以把某个模拟节点的管理接口暴露为 HTTP 服务。
//
// 使用方法:
//
//	survey-sim keygen --out node.pem
//	survey-sim scenario --surveyor A B C D
//	survey-sim serve --addr 127.0.0.1:11626
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
