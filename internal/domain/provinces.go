package domain

// defaultProvinces is the built-in level 1 list used when the province
// endpoint cannot be reached.
var defaultProvinces = [...]Region{
	{Code: "01", Name: "北京"},
	{Code: "02", Name: "上海"},
	{Code: "03", Name: "天津"},
	{Code: "04", Name: "重庆"},
	{Code: "05", Name: "黑龙江"},
	{Code: "06", Name: "吉林"},
	{Code: "07", Name: "辽宁"},
	{Code: "08", Name: "内蒙古"},
	{Code: "09", Name: "河北"},
	{Code: "10", Name: "山西"},
	{Code: "11", Name: "陕西"},
	{Code: "12", Name: "山东"},
	{Code: "13", Name: "新疆"},
	{Code: "14", Name: "西藏"},
	{Code: "15", Name: "青海"},
	{Code: "16", Name: "甘肃"},
	{Code: "17", Name: "宁夏"},
	{Code: "18", Name: "河南"},
	{Code: "19", Name: "江苏"},
	{Code: "20", Name: "湖北"},
	{Code: "21", Name: "浙江"},
	{Code: "22", Name: "安徽"},
	{Code: "23", Name: "福建"},
	{Code: "24", Name: "江西"},
	{Code: "25", Name: "湖南"},
	{Code: "26", Name: "贵州"},
	{Code: "27", Name: "四川"},
	{Code: "28", Name: "广东"},
	{Code: "29", Name: "云南"},
	{Code: "30", Name: "广西"},
	{Code: "31", Name: "海南"},
	{Code: "32", Name: "香港"},
	{Code: "33", Name: "澳门"},
	{Code: "34", Name: "台湾"},
}

// DefaultProvinces returns a fresh copy of the built-in province table.
func DefaultProvinces() []Region {
	out := make([]Region, len(defaultProvinces))
	copy(out, defaultProvinces[:])
	return out
}
