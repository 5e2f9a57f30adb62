package handler

// DI for all handlers and models alike.

import (
	mydb "github.com/yumyai/otuview/pkg/db"
)

type DBContext struct {
	Analyses *mydb.AnalysisDB
}
