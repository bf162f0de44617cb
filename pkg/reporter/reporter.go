package reporter

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"tokengate/pkg/contract"

	"github.com/fatih/color"
)

const (
	heavyRule = "════════════════════════════════════════════════════════════"
	lightRule = "────────────────────────────────────────────────────────────"
)

// StartupInfo 启动摘要中展示的信息
type StartupInfo struct {
	Addr     string
	RPCURL   string
	Contract string
	Sender   string
	Routes   []string
}

// Reporter 终端输出（启动摘要、方法表）
type Reporter struct {
	out io.Writer
}

// NewReporter 创建终端输出器
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// PrintStartup 打印启动摘要
func (r *Reporter) PrintStartup(info StartupInfo, methods []contract.Method) {
	fmt.Fprintln(r.out, heavyRule)
	color.New(color.FgCyan, color.Bold).Fprintln(r.out, "tokengate")
	fmt.Fprintln(r.out, heavyRule)

	fmt.Fprintf(r.out, "监听地址: http://localhost%s\n", info.Addr)
	fmt.Fprintf(r.out, "RPC端点: %s\n", redactURL(info.RPCURL))
	fmt.Fprintf(r.out, "合约地址: %s\n", info.Contract)
	fmt.Fprintf(r.out, "发送账户: %s\n", info.Sender)
	fmt.Fprintln(r.out, lightRule)

	fmt.Fprintln(r.out, "路由:")
	for _, route := range info.Routes {
		fmt.Fprintf(r.out, "  %s\n", route)
	}
	fmt.Fprintln(r.out, lightRule)

	r.printMethods(methods)
	fmt.Fprintln(r.out, heavyRule)
}

// PrintMethods 只打印方法表
func (r *Reporter) PrintMethods(methods []contract.Method) {
	fmt.Fprintln(r.out, heavyRule)
	r.printMethods(methods)
	fmt.Fprintln(r.out, heavyRule)
}

func (r *Reporter) printMethods(methods []contract.Method) {
	fmt.Fprintf(r.out, "ABI条目数: %d\n", len(methods))
	for _, m := range methods {
		tag := mutabilityColor(m.Mutability)
		tag.Fprintf(r.out, "  [%-11s] ", m.Mutability)
		fmt.Fprintf(r.out, "%s(%s)", displayName(m), joinParams(m.Inputs))
		if len(m.Outputs) > 0 {
			fmt.Fprintf(r.out, " -> %s", joinParams(m.Outputs))
		}
		fmt.Fprintln(r.out)
	}
}

func mutabilityColor(m contract.Mutability) *color.Color {
	switch m {
	case contract.MutabilityRead:
		return color.New(color.FgGreen)
	case contract.MutabilityWrite:
		return color.New(color.FgRed, color.Bold)
	case contract.MutabilityEvent:
		return color.New(color.FgCyan)
	}
	return color.New(color.FgYellow)
}

func displayName(m contract.Method) string {
	if m.Name == "" {
		return string(m.Mutability)
	}
	return m.Name
}

func joinParams(params []contract.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.Name != "" {
			parts = append(parts, p.Type+" "+p.Name)
		} else {
			parts = append(parts, p.Type)
		}
	}
	return strings.Join(parts, ", ")
}

// redactURL 只保留scheme和host，路径里通常带有API key
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<invalid>"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Scheme + "://" + u.Host + "/***"
	}
	return u.Scheme + "://" + u.Host
}
