package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	"github.com/couchcryptid/cityinfo-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := confirm(strings.NewReader(tt.input), &out, "继续？")
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "继续？ [y/N]: ")
	}
}

func TestConsole_Summary(t *testing.T) {
	var out bytes.Buffer
	c := newConsole(&out)

	c.summary(pipeline.Result{
		Catalog: domain.Catalog{
			{ID: "101010100", Name: "北京"},
			{ID: "101220607", Name: "望江"},
		},
		Provinces:    34,
		FallbackUsed: true,
		Validated:    true,
		Valid:        2,
		Invalid:      1,
	}, "city.json", "city.json.20260314")

	s := out.String()
	assert.Contains(t, s, "数据已保存到 city.json")
	assert.Contains(t, s, "原文件已备份为: city.json.20260314")
	assert.Contains(t, s, "- 省份数: 34（使用内置省份列表）")
	assert.Contains(t, s, "- 总记录数: 2")
	assert.Contains(t, s, "- 有效: 2, 无效: 1")
	assert.Contains(t, s, "- 第一条记录: 101010100 北京")
	assert.Contains(t, s, "- 最后一条记录: 101220607 望江")
}

func TestConsole_SummaryWithoutBackup(t *testing.T) {
	var out bytes.Buffer
	newConsole(&out).summary(pipeline.Result{
		Catalog:   domain.Catalog{{ID: "101010100", Name: "北京"}},
		Provinces: 1,
	}, "city.json", "")

	assert.NotContains(t, out.String(), "备份")
	assert.NotContains(t, out.String(), "有效")
}

func TestConsole_Progress(t *testing.T) {
	var out bytes.Buffer
	c := newConsole(&out)

	c.ProvinceStarted(3, 34, domain.Region{Code: "03", Name: "天津"})
	c.DistrictValidated(domain.District{ID: "101030100", Name: "天津", Province: "天津", City: "天津"}, true, "valid")
	c.DistrictValidated(domain.District{ID: "101039999", Name: "测试"}, false, "HTTP error: 404")

	assert.Equal(t,
		"处理省份 3/34: 天津\n"+
			"  有效 101030100 天津/天津/天津\n"+
			"  无效 101039999 测试: HTTP error: 404\n",
		out.String())
}
