package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MukamaJ-2/crypto-vault/internal/middleware"
	"github.com/MukamaJ-2/crypto-vault/internal/store"
	"github.com/MukamaJ-2/crypto-vault/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ExportHandler struct {
	Rows store.LedgerStore
	Log  *zap.Logger
}

func NewExportHandler(rows store.LedgerStore, log *zap.Logger) *ExportHandler {
	return &ExportHandler{Rows: rows, Log: log}
}

var exportHeaders = []string{"Plan", "Type", "Amount (USD)", "Crypto Amount", "Crypto", "Status", "Date"}

// exportRows flattens all of a user's plans into one transaction row list,
// keeping the store's plan ordering.
func (h *ExportHandler) exportRows(c *gin.Context) ([][]string, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}

	plans, err := h.Rows.PlansByUser(c.Request.Context(), userID)
	if err != nil {
		h.Log.Error("export query failed", zap.Error(err), zap.String("user_id", userID))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return nil, false
	}

	var rows [][]string
	for _, p := range plans {
		for _, tx := range p.Transactions {
			rows = append(rows, []string{
				p.Name,
				string(tx.Type),
				strconv.FormatFloat(tx.Amount, 'f', 2, 64),
				strconv.FormatFloat(tx.CryptoAmount, 'f', 8, 64),
				string(tx.CryptoType),
				string(tx.Status),
				tx.CreatedAt.Format("2006-01-02"),
			})
		}
	}
	return rows, true
}

// ExportCSV streams the user's transactions as a CSV download.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.exportRows(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so Excel opens it correctly
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, row := range rows {
		writer.Write(row)
	}
}

// ExportXLSX streams the user's transactions as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, ok := h.exportRows(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx, row := range rows {
		for col, val := range row {
			cell := fmt.Sprintf("%c%d", 'A'+col, idx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "D", 15)
	f.SetColWidth(sheetName, "E", "F", 10)
	f.SetColWidth(sheetName, "G", "G", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
