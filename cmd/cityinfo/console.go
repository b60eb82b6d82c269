package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	"github.com/couchcryptid/cityinfo-etl/internal/pipeline"
)

// console prints human progress, normally to stderr, keeping it apart from
// the structured logs on stdout. It implements pipeline.Reporter.
type console struct {
	w io.Writer
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

func (c *console) started(validate bool) {
	if validate {
		fmt.Fprintln(c.w, "开始获取天气区县数据（验证模式）...")
		return
	}
	fmt.Fprintln(c.w, "开始获取天气区县数据...")
}

func (c *console) ProvinceStarted(index, total int, p domain.Region) {
	fmt.Fprintf(c.w, "处理省份 %d/%d: %s\n", index, total, p.Name)
}

func (c *console) DistrictValidated(d domain.District, valid bool, reason string) {
	if valid {
		fmt.Fprintf(c.w, "  有效 %s %s/%s/%s\n", d.ID, d.Province, d.City, d.Name)
		return
	}
	fmt.Fprintf(c.w, "  无效 %s %s: %s\n", d.ID, d.Name, reason)
}

func (c *console) summary(res pipeline.Result, path, backup string) {
	fmt.Fprintf(c.w, "数据已保存到 %s\n", path)
	if backup != "" {
		fmt.Fprintf(c.w, "原文件已备份为: %s\n", backup)
	}

	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, "数据统计:")
	fmt.Fprintf(c.w, "- 省份数: %d", res.Provinces)
	if res.FallbackUsed {
		fmt.Fprint(c.w, "（使用内置省份列表）")
	}
	fmt.Fprintln(c.w)
	fmt.Fprintf(c.w, "- 总记录数: %d\n", len(res.Catalog))
	if res.Validated {
		fmt.Fprintf(c.w, "- 有效: %d, 无效: %d\n", res.Valid, res.Invalid)
	}
	if len(res.Catalog) > 0 {
		fmt.Fprintf(c.w, "- 第一条记录: %s %s\n", res.Catalog[0].ID, res.Catalog[0].Name)
		last := res.Catalog[len(res.Catalog)-1]
		fmt.Fprintf(c.w, "- 最后一条记录: %s %s\n", last.ID, last.Name)
	}
}

func (c *console) noOutput() {
	fmt.Fprintln(c.w, "未获取到任何区县数据，未写入文件")
}

func (c *console) failed(err error) {
	fmt.Fprintf(c.w, "运行失败：%v\n", err)
}

func (c *console) cancelled() {
	fmt.Fprintln(c.w, "已取消")
}

// confirm asks a y/N question. Anything other than y or yes, including EOF,
// is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
