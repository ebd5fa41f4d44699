package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/brokerage-backend/internal/data/repos"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type Repos struct {
	User                repos.UserRepo
	Transaction         repos.TransactionRepo
	TransactionDocument repos.TransactionDocumentRepo
	ActionDefinition    repos.ActionDefinitionRepo
	ActionCompletion    repos.ActionCompletionRepo
	ActionIntent        repos.ActionIntentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:                repos.NewUserRepo(db, log),
		Transaction:         repos.NewTransactionRepo(db, log),
		TransactionDocument: repos.NewTransactionDocumentRepo(db, log),
		ActionDefinition:    repos.NewActionDefinitionRepo(db, log),
		ActionCompletion:    repos.NewActionCompletionRepo(db, log),
		ActionIntent:        repos.NewActionIntentRepo(db, log),
	}
}
