package soildata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Loader 装载配置。Schema 必填（零值即矿质模式），Filter 可选。
// 约束：同一坐标出现多行时后行覆盖前行（与归档库的 upsert 语义一致）。
type Loader struct {
	Schema Schema
	Filter RowFilter
}

// 文档注释：流式遍历数据行
// 背景：首行为表头（内容忽略），之后每行 lon lat 加模式字段，空白分隔，
// 空行跳过；坏行（字段数不符或数值解析失败）立即中止并报行号，绝不静默丢行。
// 约束：限制集外的行同样做完整解析校验，只是不回调；单 goroutine 执行。
// 返回：回调成功的行数；错误时已回调的行数照常返回。
func (l Loader) Each(r io.Reader, name string, fn func(Coord, Record) error) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, fmt.Errorf("read %s: %w", name, err)
		}
		// 空流：既无表头也无数据，交给上层按零行处理
		return 0, nil
	}
	want := 2 + l.Schema.fieldCount()
	kept := 0
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != want {
			return kept, fmt.Errorf("%s:%d: %w: got %d fields, want %d", name, line, ErrMalformedRecord, len(fields), want)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return kept, fmt.Errorf("%s:%d: %w: lon %q", name, line, ErrMalformedRecord, fields[0])
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return kept, fmt.Errorf("%s:%d: %w: lat %q", name, line, ErrMalformedRecord, fields[1])
		}
		rec, err := l.parseFields(fields[2:])
		if err != nil {
			return kept, fmt.Errorf("%s:%d: %w: %v", name, line, ErrMalformedRecord, err)
		}
		c := Coord{Lon: lon, Lat: lat}
		if l.Filter != nil && !l.Filter(c) {
			continue
		}
		if err := fn(c, rec); err != nil {
			return kept, err
		}
		kept++
	}
	if err := sc.Err(); err != nil {
		return kept, fmt.Errorf("read %s: %w", name, err)
	}
	return kept, nil
}

func (l Loader) parseFields(fields []string) (Record, error) {
	var rec Record
	if l.Schema == SchemaCode {
		code, err := strconv.Atoi(fields[0])
		if err != nil {
			return rec, fmt.Errorf("soil code %q", fields[0])
		}
		rec.Code = code
		return rec, nil
	}
	var v [8]float64
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return rec, fmt.Errorf("field %d %q", i+3, fields[i])
		}
		v[i] = f
	}
	rec.Sand, rec.Silt, rec.Clay = v[0], v[1], v[2]
	rec.OrgCarbon, rec.BulkDensity, rec.PH = v[3], v[4], v[5]
	rec.SoilCarbon, rec.CN = v[6], v[7]
	return rec, nil
}

// 文档注释：从流装载数据集
// 背景：name 仅用于错误与日志定位（文件路径、对象键或 "<stream>"）。
// 返回：装载完成即建好 KD 索引的不可变数据集。
// 异常：坏行返回 ErrMalformedRecord；过滤后零站点返回 ErrEmptyDataset。
func (l Loader) Load(r io.Reader, name string) (*Dataset, error) {
	records := make(map[Coord]Record)
	if _, err := l.Each(r, name, func(c Coord, rec Record) error {
		records[c] = rec
		return nil
	}); err != nil {
		return nil, err
	}
	return New(l.Schema, name, records)
}

// LoadFile 按路径装载；打开失败一律归为 ErrDatasetNotFound 并带上路径。
func (l Loader) LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetNotFound, err)
	}
	defer f.Close()
	return l.Load(f, path)
}
