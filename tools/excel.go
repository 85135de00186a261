package tools

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/xuri/excelize/v2"
)

type excelColumn struct {
	index  []int
	header string
}

// excelColumns 按 `excel` tag 收集导出列，tag 为 "-" 的字段跳过，匿名结构体展开
func excelColumns(t reflect.Type, parent []int) []excelColumn {
	var cols []excelColumn
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		idx := append(append([]int(nil), parent...), i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			cols = append(cols, excelColumns(sf.Type, idx)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		header := sf.Tag.Get("excel")
		if header == "-" {
			continue
		}
		if header == "" {
			header = sf.Name
		}
		cols = append(cols, excelColumn{index: idx, header: header})
	}
	return cols
}

// WriteSheet 把结构体切片写入 sheet，第一行为表头
func WriteSheet(f *excelize.File, sheet string, rows any) error {
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("rows 必须是切片，实际为 %T", rows)
	}
	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("rows 必须是结构体切片，实际为 %T", rows)
	}
	if sheet == "" {
		sheet = "Sheet1"
	}
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}

	cols := excelColumns(elemType, nil)
	header := make([]any, len(cols))
	for i, col := range cols {
		header[i] = col.header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	line := 2
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}
		values := make([]any, len(cols))
		for j, col := range cols {
			fv := elem.FieldByIndex(col.index)
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					values[j] = ""
					continue
				}
				fv = fv.Elem()
			}
			values[j] = fv.Interface()
		}
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		line++
	}
	return nil
}

// ExcelBytes 生成只含一个 sheet 的工作簿
func ExcelBytes(sheet string, rows any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := WriteSheet(f, sheet, rows); err != nil {
		return nil, err
	}
	if sheet != "" && sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
