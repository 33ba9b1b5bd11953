package Controllers

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/RafaelFrancoD/CRM-hol-stico/Models"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gin-gonic/gin"
)

// datePart trims an RFC3339 instant (or a plain date) to its YYYY-MM-DD part
// so range filters compare calendar days.
func datePart(value string) string {
	if len(value) > 10 {
		return value[:10]
	}
	return value
}

func loadTransactions(owner string) ([]Models.Transaction, error) {
	records, err := Models.ListRecords(Models.DB, Models.StoreFinance, owner)
	if err != nil {
		return nil, err
	}
	transactions := make([]Models.Transaction, 0, len(records))
	for i := range records {
		var transaction Models.Transaction
		if err := records[i].Decode(&transaction); err != nil {
			continue
		}
		transaction.ID = records[i].ID
		transactions = append(transactions, transaction)
	}
	return transactions, nil
}

func ExportTransactionsExcel(c *gin.Context) {
	var input struct {
		DateFrom string `json:"date_from"`
		DateTo   string `json:"date_to"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transactions, err := loadTransactions(ownerEmail(c))
	if err != nil {
		recordError(c, err)
		return
	}

	if input.DateFrom != "" && input.DateTo != "" {
		filtered := transactions[:0]
		for _, transaction := range transactions {
			day := datePart(transaction.Date)
			if day >= input.DateFrom && day <= input.DateTo {
				filtered = append(filtered, transaction)
			}
		}
		transactions = filtered
	}

	headers := map[string]string{
		"A1": "Date",
		"B1": "Description",
		"C1": "Category",
		"D1": "Type",
		"E1": "Status",
		"F1": "Amount",
		"G1": "Patient",
	}
	file := excelize.NewFile()
	sheet := "Transactions"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")
	for k, v := range headers {
		file.SetCellValue(sheet, k, v)
	}

	for index, transaction := range transactions {
		row := index + 2
		file.SetCellValue(sheet, fmt.Sprintf("A%v", row), datePart(transaction.Date))
		file.SetCellValue(sheet, fmt.Sprintf("B%v", row), transaction.Description)
		file.SetCellValue(sheet, fmt.Sprintf("C%v", row), transaction.Category)
		file.SetCellValue(sheet, fmt.Sprintf("D%v", row), transaction.Type)
		file.SetCellValue(sheet, fmt.Sprintf("E%v", row), transaction.Status)
		file.SetCellValue(sheet, fmt.Sprintf("F%v", row), transaction.Amount)
		file.SetCellValue(sheet, fmt.Sprintf("G%v", row), transaction.PatientName)
	}

	tmp, err := os.CreateTemp("", "transactions-*.xlsx")
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export transactions"})
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := file.SaveAs(tmp.Name()); err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export transactions"})
		return
	}
	c.FileAttachment(tmp.Name(), "Transactions.xlsx")
}

// FinanceSummary totals the ledger per type for the dashboard cards.
func FinanceSummary(c *gin.Context) {
	transactions, err := loadTransactions(ownerEmail(c))
	if err != nil {
		recordError(c, err)
		return
	}

	var income, expense, receivable float64
	var pending int
	for _, transaction := range transactions {
		switch transaction.Type {
		case Models.TransactionIncome:
			income += transaction.Amount
		case Models.TransactionExpense:
			expense += transaction.Amount
		case Models.TransactionReceivable:
			receivable += transaction.Amount
		}
		if transaction.Status == Models.TransactionPending {
			pending++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"income":     income,
		"expense":    expense,
		"receivable": receivable,
		"pending":    pending,
		"balance":    income - expense,
	})
}
