// 包 config：批量解析运行配置（YAML 文件）。
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"soil-api/internal/soildata"
)

// DatasetConfig 数据集来源。source 取 file / postgres / minio；
// soil_code 为 true 时按编码模式解析（单列土壤分类编码）。
type DatasetConfig struct {
	Source   string `yaml:"source"`
	Path     string `yaml:"path"`
	Bucket   string `yaml:"bucket"`
	Object   string `yaml:"object"`
	SoilCode bool   `yaml:"soil_code"`
}

type SearchConfig struct {
	MaxRadiusDeg float64 `yaml:"max_radius_deg"`
}

type OutputConfig struct {
	CSV string `yaml:"csv"`
}

// Run 一次批量解析的全部设置。
type Run struct {
	Dataset            DatasetConfig `yaml:"dataset"`
	Search             SearchConfig  `yaml:"search"`
	Gridlist           string        `yaml:"gridlist"`
	RestrictToGridlist bool          `yaml:"restrict_to_gridlist"`
	Output             OutputConfig  `yaml:"output"`
	Workers            int           `yaml:"workers"`
}

// Schema 由 soil_code 开关翻译出的行模式。
func (r *Run) Schema() soildata.Schema {
	if r.Dataset.SoilCode {
		return soildata.SchemaCode
	}
	return soildata.SchemaMineral
}

// Load 读取并校验运行配置，零值字段回填默认。
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config: %w", err)
	}
	var cfg Run
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse run config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("run config %s: %w", path, err)
	}
	return &cfg, nil
}

func (r *Run) applyDefaults() {
	if r.Dataset.Source == "" {
		r.Dataset.Source = "file"
	}
	if r.Search.MaxRadiusDeg == 0 {
		r.Search.MaxRadiusDeg = 0.1
	}
	if r.Workers <= 0 {
		r.Workers = 4
	}
	if r.Output.CSV == "" {
		r.Output.CSV = "soil_resolved.csv"
	}
}

func (r *Run) validate() error {
	switch r.Dataset.Source {
	case "file":
		if r.Dataset.Path == "" {
			return errors.New("dataset.path is required for source file")
		}
	case "minio":
		if r.Dataset.Bucket == "" || r.Dataset.Object == "" {
			return errors.New("dataset.bucket and dataset.object are required for source minio")
		}
	case "postgres":
		// 连接参数走 PG_* 环境变量，无需文件配置
	default:
		return fmt.Errorf("dataset.source %q: want file, postgres or minio", r.Dataset.Source)
	}
	if r.Gridlist == "" {
		return errors.New("gridlist is required")
	}
	if !(r.Search.MaxRadiusDeg > 0) {
		return errors.New("search.max_radius_deg must be positive")
	}
	return nil
}
