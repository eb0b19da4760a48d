package api

// 文档注释：对外序列化模型
// 背景：统一返回结构，仅包含必要字段，避免内部类型细节外泄；record 按
// 数据集模式给矿质或编码两种形态，字段稳定，新增需评估前端依赖。
type coordJSON struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type mineralJSON struct {
	Sand        float64 `json:"sand"`
	Silt        float64 `json:"silt"`
	Clay        float64 `json:"clay"`
	OrgCarbon   float64 `json:"orgc"`
	BulkDensity float64 `json:"bulkdensity"`
	PH          float64 `json:"ph"`
	SoilCarbon  float64 `json:"soilc"`
	CN          float64 `json:"cn"`
}

type codeJSON struct {
	Code int `json:"code"`
}

type resolveResult struct {
	Query       coordJSON `json:"query"`
	Site        coordJSON `json:"site"`
	DistanceDeg float64   `json:"distance_deg"`
	Schema      string    `json:"schema"`
	Record      any       `json:"record"`
}

type recordResult struct {
	Site   coordJSON `json:"site"`
	Schema string    `json:"schema"`
	Record any       `json:"record"`
}

// errorResult 未命中时带上查询点与半径，调用方可直接放大半径重试
type errorResult struct {
	Error     string     `json:"error"`
	Query     *coordJSON `json:"query,omitempty"`
	RadiusDeg float64    `json:"radius_deg,omitempty"`
}

type boundsJSON struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

type infoResult struct {
	Sites    int        `json:"sites"`
	Schema   string     `json:"schema"`
	Source   string     `json:"source"`
	BuiltAt  string     `json:"built_at"`
	Bounds   boundsJSON `json:"bounds"`
	Requests int64      `json:"requests_today"`
	Misses   int64      `json:"misses_today"`
	Commit   string     `json:"commit"`
}
