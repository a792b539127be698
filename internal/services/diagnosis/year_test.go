package diagnosis

import "testing"

func TestExtractYear_MarketingNameRegexWins(t *testing.T) {
	// 营销名里带四位年份时，正则优先于机型代号表。
	year, ok := ExtractYear("MacBook Pro (Retina, 15-inch, Mid 2015)")
	if !ok || year != 2015 {
		t.Fatalf("year=%d ok=%v, want 2015 true", year, ok)
	}
}

func TestExtractYear_FamilyTable(t *testing.T) {
	cases := []struct {
		model string
		year  int
	}{
		{"MacBookPro14,1", 2017},
		{"MacBookPro11,4", 2013},
		{"MacBookPro18,3", 2021},
		{"MacBookAir7,2", 2015},
		{"MacBook8,1", 2015},
		{"iMac18,3", 2017},
		{"Macmini8,1", 2018},
	}
	for _, c := range cases {
		year, ok := ExtractYear(c.model)
		if !ok || year != c.year {
			t.Fatalf("ExtractYear(%q)=%d,%v, want %d,true", c.model, year, ok, c.year)
		}
	}
}

func TestExtractYear_UnknownIsStable(t *testing.T) {
	// 未知输入必须稳定地返回 ok=false，重复调用结果一致，绝不 panic。
	for i := 0; i < 3; i++ {
		for _, m := range []string{"", "PowerBook G4", "ThinkPad X1", "Mac15"} {
			if year, ok := ExtractYear(m); ok {
				t.Fatalf("ExtractYear(%q)=%d, want unknown", m, year)
			}
		}
	}
}

func TestFamilyMatch_DigitPrefixCollision(t *testing.T) {
	// 代数截胡防护：条目 "MacBookPro11" 不得命中更高代数的数字串。
	if containsAnyFamily("MacBookPro113", dGPUFamilies) {
		t.Fatalf("MacBookPro113 should not match MacBookPro11")
	}
	if !isDGPUFamily("MacBookPro11,4") {
		t.Fatalf("MacBookPro11,4 should match dGPU family")
	}
	// 整系列条目（不以数字结尾）不受数字防护限制。
	if !IsSolderedFamily("MacBookAir7,2") {
		t.Fatalf("MacBookAir7,2 should match soldered family MacBookAir")
	}
	if IsSolderedFamily("MacBookPro9,2") {
		t.Fatalf("MacBookPro9,2 is socketed, not soldered")
	}
}
