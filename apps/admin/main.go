package main

import (
	"log"
	"os"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/storage/database"
	sqlxrepos "github.com/JUSAIR-JSR/MEA-Student-portal/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	// createdb runs before the app database can be opened
	if len(os.Args) > 1 && os.Args[1] == "createdb" {
		errAndDie(database.CreateIfNotExist(conf))
		logger.Println("database ready")
		return
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	repo := sqlxrepos.NewAccountRepository(db)
	cli := commandLine{
		db:   db,
		repo: repo,
		svc:  account.NewService(repo, conf.Google.AdminEmails),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
