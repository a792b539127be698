package report

// 报告内容模型与序列化分离：
// Build* 产出可单测的结构化模型，Text()/HTML() 只负责排版。
// 需要换邮件模板时只动序列化方法，内容逻辑不受影响。

// Item 是报告中的一条条目。
type Item struct {
	Title          string
	Detail         string
	Recommendation string
}

// Lead 是销售简报中的一条可报价服务线索。
type Lead struct {
	Service string
	Detail  string
	Value   float64
}
