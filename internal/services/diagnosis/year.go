package diagnosis

import (
	"regexp"
	"strconv"
	"strings"
)

// 型号 → 出厂年份解析。
//
// 两级策略：
// 1) 型号字符串里直接带四位年份（营销名，例如 "MacBook Pro (Retina, 15-inch, Mid 2015)"）
//    时，正则优先。
// 2) 否则查 Apple 机型代号表（例如 "MacBookPro11,4"）。
//
// 代号与年份的对应关系不是公式化的（存在跳代与同代跨年），
// 所以这张表必须按字面数据维护，不要试图用代数推算。
var reModelYear = regexp.MustCompile(`20\d{2}`)

// familyYears 按“同系列代数降序”排列。
// 顺序敏感：子串匹配时 "MacBookPro1" 是 "MacBookPro14" 的前缀，
// 先查高代数才能避免旧代条目截胡新机型。
var familyYears = []struct {
	Token string
	Year  int
}{
	{"MacBookPro18", 2021},
	{"MacBookPro17", 2020},
	{"MacBookPro16", 2019},
	{"MacBookPro15", 2018},
	{"MacBookPro14", 2017},
	{"MacBookPro13", 2016},
	{"MacBookPro12", 2015},
	{"MacBookPro11", 2013},
	{"MacBookPro10", 2012},
	{"MacBookPro9", 2012},
	{"MacBookPro8", 2011},
	{"MacBookAir10", 2020},
	{"MacBookAir9", 2020},
	{"MacBookAir8", 2018},
	{"MacBookAir7", 2015},
	{"MacBookAir6", 2013},
	{"MacBookAir5", 2012},
	{"MacBook10", 2017},
	{"MacBook9", 2016},
	{"MacBook8", 2015},
	{"iMac21", 2021},
	{"iMac20", 2020},
	{"iMac19", 2019},
	{"iMac18", 2017},
	{"iMac17", 2015},
	{"iMac16", 2015},
	{"iMac15", 2014},
	{"iMac14", 2013},
	{"iMac13", 2012},
	{"Macmini9", 2020},
	{"Macmini8", 2018},
	{"Macmini7", 2014},
	{"Macmini6", 2012},
}

// solderedFamilies 是内存板载（物理上不可加装）的机型系列。
// 该表与年龄判断互相独立：命中此表的机器绝不给出内存升级建议。
var solderedFamilies = []string{
	"MacBookAir",
	"MacBook8",
	"MacBook9",
	"MacBook10",
	"MacBookPro10",
	"MacBookPro11",
	"MacBookPro12",
	"MacBookPro13",
	"MacBookPro14",
	"MacBookPro15",
	"MacBookPro16",
	"MacBookPro17",
	"MacBookPro18",
}

// dGPUFamilies 是独显故障高发的老款机型系列（返修经验数据）。
var dGPUFamilies = []string{
	"MacBookPro8",
	"MacBookPro10",
	"MacBookPro11",
}

// ExtractYear 从型号标识解析出厂年份。
// 解析不到时返回 ok=false，绝不报错：型号是自由文本，陌生值属于常态。
func ExtractYear(model string) (year int, ok bool) {
	model = strings.TrimSpace(model)
	if model == "" {
		return 0, false
	}

	if m := reModelYear.FindString(model); m != "" {
		y, err := strconv.Atoi(m)
		if err == nil {
			return y, true
		}
	}

	for _, fy := range familyYears {
		if strings.Contains(model, fy.Token) {
			return fy.Year, true
		}
	}

	return 0, false
}

// IsSolderedFamily 判断型号是否属于内存板载系列。
func IsSolderedFamily(model string) bool {
	return containsAnyFamily(model, solderedFamilies)
}

// isDGPUFamily 判断型号是否属于独显故障高发系列。
func isDGPUFamily(model string) bool {
	return containsAnyFamily(model, dGPUFamilies)
}

func containsAnyFamily(model string, families []string) bool {
	model = strings.TrimSpace(model)
	if model == "" {
		return false
	}
	for _, f := range families {
		idx := strings.Index(model, f)
		if idx < 0 {
			continue
		}
		// 防止代数截胡：当条目本身以数字结尾（例如 "MacBookPro11"），
		// 而型号在其后紧跟另一位数字（例如 MacBookPro11x 其实是更高代数）时不算命中。
		// 像 "MacBookAir" 这类整系列条目不受此限制。
		rest := model[idx+len(f):]
		if isDigit(f[len(f)-1]) && rest != "" && isDigit(rest[0]) {
			continue
		}
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
