package repos

import (
	"github.com/yungbote/brokerage-backend/internal/data/repos/transactions"
	"github.com/yungbote/brokerage-backend/internal/data/repos/user"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo

type TransactionRepo = transactions.TransactionRepo
type TransactionDocumentRepo = transactions.TransactionDocumentRepo
type ActionDefinitionRepo = transactions.ActionDefinitionRepo
type ActionCompletionRepo = transactions.ActionCompletionRepo
type ActionIntentRepo = transactions.ActionIntentRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
	return transactions.NewTransactionRepo(db, baseLog)
}
func NewTransactionDocumentRepo(db *gorm.DB, baseLog *logger.Logger) TransactionDocumentRepo {
	return transactions.NewTransactionDocumentRepo(db, baseLog)
}
func NewActionDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) ActionDefinitionRepo {
	return transactions.NewActionDefinitionRepo(db, baseLog)
}
func NewActionCompletionRepo(db *gorm.DB, baseLog *logger.Logger) ActionCompletionRepo {
	return transactions.NewActionCompletionRepo(db, baseLog)
}
func NewActionIntentRepo(db *gorm.DB, baseLog *logger.Logger) ActionIntentRepo {
	return transactions.NewActionIntentRepo(db, baseLog)
}
