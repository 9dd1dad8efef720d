// Package main provides a stress test for the batchdb package.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/friendlycaptcha/batchdb"
	"golang.org/x/exp/rand"
)

type record struct {
	ID    uint `gorm:"primaryKey"`
	Value int
}

func main() {
	for i := 0; i < 100; i++ {
		adds := rand.Intn(1000) + 1
		itemsPerAdd := rand.Intn(10) + 1
		batchSize := rand.Intn(1000) + 1
		saveEvery := time.Duration(rand.Intn(1000)+1) * time.Microsecond
		test(adds, itemsPerAdd, batchSize, saveEvery)
	}
}

func test(adds int, itemsPerAdd int, batchSize int, saveEvery time.Duration) {
	ctx := context.Background()
	expectTotal := int64(adds * itemsPerAdd)

	fmt.Printf(
		"📋 Test with %d adds, %d itemsPerAdd, %d batchSize, saveEvery %s\n",
		adds,
		itemsPerAdd,
		batchSize,
		saveEvery.String(),
	)

	db, err := batchdb.Open("", batchdb.WithModels(&record{}))
	if err != nil {
		panic(err)
	}

	writer, err := batchdb.New(db).BatchSize(batchSize).SaveEvery(saveEvery).Build()
	if err != nil {
		panic(err)
	}

	for i := 0; i < adds; i++ {
		items := make([]any, itemsPerAdd)
		for j := range items {
			items[j] = &record{Value: rand.Intn(1000)}
		}
		if err := writer.Add(ctx, items...); err != nil {
			panic(err)
		}
	}

	fmt.Printf(" - ⏱️ ... Closing the writer\n")
	if err := writer.Close(ctx); err != nil {
		panic(err)
	}

	var total int64
	if err := db.Model(&record{}).Count(&total).Error; err != nil {
		panic(err)
	}

	if total != expectTotal {
		fmt.Printf(" - ❌ total (%d) != expectTotal (%d)\n", total, expectTotal)
	} else {
		fmt.Printf(" - ✅ Test good\n")
	}
}
