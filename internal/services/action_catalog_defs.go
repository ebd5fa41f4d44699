package services

import (
	"gorm.io/datatypes"

	types "github.com/yungbote/brokerage-backend/internal/domain"
)

// Role tags understood by required_roles.
const (
	RoleBroker = "broker"
	RoleAdmin  = "admin"
	RoleNotary = "notary"
)

func catalogList(v ...string) datatypes.JSONSlice[string] {
	return datatypes.JSONSlice[string](append([]string{}, v...))
}

func catalogDays(n int) *int { return &n }

// BuiltinActionDefinitions returns a fresh copy of the seeded catalog.
func BuiltinActionDefinitions() []*types.ActionDefinition {
	defs := []*types.ActionDefinition{
		{
			Code:                   "publish_listing",
			Name:                   "Publier l'inscription",
			Description:            "Mettre la propriété en marché une fois l'adresse et le prix d'inscription connus.",
			FromStatus:             types.StatusInProgress,
			ToStatus:               types.StatusListed,
			RequiredFields:         catalogList("property_address", "listing_price"),
			CreatesDeadline:        true,
			DeadlineType:           "listing_expiry",
			DeadlineDays:           catalogDays(90),
			SendsNotification:      true,
			NotificationRecipients: catalogList("broker"),
			OrderIndex:             1,
		},
		{
			Code:                   "submit_offer",
			Name:                   "Soumettre une offre",
			Description:            "Enregistrer la promesse d'achat des acheteurs.",
			FromStatus:             types.StatusListed,
			ToStatus:               types.StatusOfferSubmitted,
			RequiredFields:         catalogList("offered_price", "buyers"),
			CreatesDeadline:        true,
			DeadlineType:           "offer_response",
			DeadlineDays:           catalogDays(2),
			GeneratesDocument:      true,
			DocumentTemplate:       "promesse_achat",
			SendsNotification:      true,
			NotificationRecipients: catalogList("seller", "broker"),
			OrderIndex:             2,
		},
		{
			Code:                   "accept_offer",
			Name:                   "Accepter l'offre",
			Description:            "Le vendeur accepte la promesse d'achat signée.",
			FromStatus:             types.StatusOfferSubmitted,
			ToStatus:               types.StatusOfferAccepted,
			RequiredFields:         catalogList("promise_acceptance_date"),
			RequiredDocuments:      catalogList("promise_to_purchase"),
			RequiredRoles:          catalogList(RoleBroker, RoleAdmin),
			CreatesDeadline:        true,
			DeadlineType:           "inspection",
			DeadlineDays:           catalogDays(10),
			SendsNotification:      true,
			NotificationRecipients: catalogList("buyer", "seller"),
			OrderIndex:             3,
		},
		{
			Code:                   "counter_offer",
			Name:                   "Faire une contre-proposition",
			Description:            "Le vendeur répond à l'offre avec un nouveau prix.",
			FromStatus:             types.StatusOfferSubmitted,
			ToStatus:               types.StatusOfferSubmitted,
			RequiredFields:         catalogList("counter_offer_price"),
			GeneratesDocument:      true,
			DocumentTemplate:       "contre_proposition",
			SendsNotification:      true,
			NotificationRecipients: catalogList("buyer"),
			OrderIndex:             4,
		},
		{
			Code:              "complete_inspection",
			Name:              "Compléter l'inspection",
			Description:       "Consigner l'inspection préachat et son rapport.",
			FromStatus:        types.StatusOfferAccepted,
			ToStatus:          types.StatusInspectionDone,
			RequiredFields:    catalogList("inspection_date"),
			RequiredDocuments: catalogList("inspection_report"),
			CreatesDeadline:   true,
			DeadlineType:      "financing",
			DeadlineDays:      catalogDays(10),
			OrderIndex:        5,
		},
		{
			Code:              "approve_financing",
			Name:              "Approuver le financement",
			Description:       "Le prêteur confirme le financement hypothécaire.",
			FromStatus:        types.StatusInspectionDone,
			ToStatus:          types.StatusFinancingApproved,
			RequiredFields:    catalogList("financing_approval_date"),
			RequiredDocuments: catalogList("financing_approval"),
			CreatesDeadline:   true,
			DeadlineType:      "notary_signing",
			DeadlineDays:      catalogDays(30),
			OrderIndex:        6,
		},
		{
			Code:                   "complete_signing",
			Name:                   "Signer l'acte de vente",
			Description:            "Signature de l'acte de vente chez le notaire.",
			FromStatus:             types.StatusFinancingApproved,
			ToStatus:               types.StatusDeedSigned,
			RequiredFields:         catalogList("signing_date"),
			RequiredDocuments:      catalogList("deed_of_sale"),
			RequiredRoles:          catalogList(RoleNotary, RoleBroker, RoleAdmin),
			GeneratesDocument:      true,
			DocumentTemplate:       "acte_vente",
			SendsNotification:      true,
			NotificationRecipients: catalogList("buyer", "seller"),
			OrderIndex:             7,
		},
		{
			Code:                   "transfer_keys",
			Name:                   "Remettre les clés",
			Description:            "Prise de possession par les acheteurs.",
			FromStatus:             types.StatusDeedSigned,
			ToStatus:               types.StatusClosed,
			RequiredFields:         catalogList("possession_date"),
			SendsNotification:      true,
			NotificationRecipients: catalogList("buyer", "seller", "broker"),
			OrderIndex:             8,
		},
		{
			Code:                   "cancel_transaction",
			Name:                   "Annuler la transaction",
			Description:            "Mettre fin à la transaction, quel que soit son statut.",
			FromStatus:             types.AnyStatus,
			ToStatus:               types.StatusCancelled,
			RequiredFields:         catalogList("cancellation_reason"),
			SendsNotification:      true,
			NotificationRecipients: catalogList("buyer", "seller", "broker"),
			OrderIndex:             9,
		},
	}
	for _, d := range defs {
		d.IsActive = true
		d.Normalize()
	}
	return defs
}
