package domain

import (
	"github.com/yungbote/brokerage-backend/internal/domain/transactions"
	"github.com/yungbote/brokerage-backend/internal/domain/user"
)

type User = user.User

type Transaction = transactions.Transaction
type TransactionDocument = transactions.TransactionDocument
type TransactionStatus = transactions.Status

type ActionDefinition = transactions.ActionDefinition
type ActionCompletion = transactions.ActionCompletion
type ActionIntent = transactions.ActionIntent
type ActionIntentKind = transactions.IntentKind
type ActionIntentStatus = transactions.IntentStatus

const (
	StatusInProgress        = transactions.StatusInProgress
	StatusListed            = transactions.StatusListed
	StatusOfferSubmitted    = transactions.StatusOfferSubmitted
	StatusOfferAccepted     = transactions.StatusOfferAccepted
	StatusInspectionDone    = transactions.StatusInspectionDone
	StatusFinancingApproved = transactions.StatusFinancingApproved
	StatusDeedSigned        = transactions.StatusDeedSigned
	StatusClosed            = transactions.StatusClosed
	StatusCancelled         = transactions.StatusCancelled
	AnyStatus               = transactions.AnyStatus

	IntentNotification = transactions.IntentNotification
	IntentDocument     = transactions.IntentDocument

	IntentPending    = transactions.IntentPending
	IntentDispatched = transactions.IntentDispatched
	IntentFailed     = transactions.IntentFailed
)
