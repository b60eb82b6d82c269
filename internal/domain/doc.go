// Package domain models the China Weather Network region catalog and the
// weather codes derived from it.
//
// # Data Source
//
// The catalog is served by www.weather.com.cn under /data/list3 as three
// levels of plain-text lists:
//
//	city.xml?level=1            provinces   "01|北京,02|上海,..."
//	city{prov}.xml?level=2      cities      "0101|北京"
//	city{city}.xml?level=3      districts   "010101|北京,010102|海淀,..."
//
// Despite the .xml suffix the body is a comma separated list of code|name
// items. Codes nest: a city code starts with its province code and a
// district code starts with its city code. Malformed items are skipped by
// [ParseRecords].
//
// # Weather Codes
//
// The weather APIs address a district by its weather code: the country
// prefix "101" followed by the district area code, so area code "220607"
// (望江, 安庆, 安徽) becomes "101220607". See [BuildWeatherCode].
//
// # Validation
//
// A weather code is considered live when the weatherol.cn
// getCurrAnd15dAnd24h endpoint answers HTTP 200 with a JSON body whose code
// field is 200 and whose data field is non-empty.
package domain
