// 包 gridlist：模拟网格单元清单的解析。
// 背景：批量预解析与限制集装载都从同一份清单出发，每行 lon lat 与可选名称，
// `#` 或 `!` 开头的行视为注释。
package gridlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"soil-api/internal/soildata"
)

// Cell 一个待解析的网格单元。Name 可为空，仅用于输出与日志。
type Cell struct {
	Coord soildata.Coord
	Name  string
}

// Parse 逐行解析清单；坏行立即报错并带行号，不静默跳过。
func Parse(r io.Reader) ([]Cell, error) {
	sc := bufio.NewScanner(r)
	var cells []Cell
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "!") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("gridlist line %d: want lon lat [name], got %q", line, text)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("gridlist line %d: bad lon %q", line, fields[0])
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("gridlist line %d: bad lat %q", line, fields[1])
		}
		cells = append(cells, Cell{
			Coord: soildata.Coord{Lon: lon, Lat: lat},
			Name:  strings.Join(fields[2:], " "),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gridlist: %w", err)
	}
	return cells, nil
}

// ParseFile 按路径解析清单文件。
func ParseFile(path string) ([]Cell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gridlist: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// CoordSet 把单元坐标收成限制集，重复单元自然去重。
func CoordSet(cells []Cell) soildata.CoordSet {
	set := make(soildata.CoordSet, len(cells))
	for _, c := range cells {
		set.Add(c.Coord)
	}
	return set
}
