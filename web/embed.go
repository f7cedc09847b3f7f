// Package web 内嵌页面模板，使二进制可以脱离源码目录运行。
package web

import "embed"

//go:embed template/*.html
var Templates embed.FS
