// 数据导入工具：把文本土壤数据集批量写入 PostgreSQL 归档库
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"soil-api/internal/ingest"
	"soil-api/internal/migrate"
	"soil-api/internal/soildata"
	"soil-api/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("file", filepath.Join("data", "soil", "soil.dat"), "soil dataset text file")
	schemaName := flag.String("schema", "mineral", "dataset schema: mineral or code")
	batch := flag.Int("batch", 5000, "rows per transaction")
	flag.Parse()

	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))

	schema, err := soildata.ParseSchema(*schemaName)
	if err != nil {
		log.Fatal(err)
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		log.Fatal(err)
	}

	tBegin := time.Now()
	n, err := ingest.ImportFile(db, *file, schema, *batch)
	if err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(tBegin)
	fmt.Printf("imported %d sites in %s (%.0f rows/s)\n", n, elapsed.Round(time.Millisecond), float64(n)/elapsed.Seconds())
}
