// 包 version：构建元信息，发布流水线经 -ldflags 注入。
package version

var (
	Version = "dev"
	Commit  = "none"
)
