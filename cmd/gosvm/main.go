// Command gosvm trains, evaluates and serves binary SVM classifiers from CSV data.
//
// Examples:
//
//	gosvm train --data train.csv --kernel rbf --sigma 0.3 --c 10 --out model.json
//	gosvm predict --model model.json --data test.csv
//	gosvm evaluate --model model.json --data test.csv
//	gosvm cv --data train.csv --folds 5
//	gosvm plot --model model.json --data train.csv --out surface.png
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
