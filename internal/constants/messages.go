package constants

// User-facing messages. The application surface is French; these strings
// travel verbatim into API error payloads, matching the files and sheets
// the fleet operators already work with.
const (
	MsgNoAccount        = "Aucun compte connecté"
	MsgTokenUnavailable = "Token d'accès non disponible"

	MsgSaveRecordsFailed       = "Erreur lors de la sauvegarde des enregistrements"
	MsgLoadRecordsFailed       = "Erreur lors du chargement des enregistrements"
	MsgSaveConsistenciesFailed = "Erreur lors de la sauvegarde des consistances"
	MsgRefreshFailed           = "Erreur lors du rafraîchissement des enregistrements"

	MsgProtocolUnavailable     = "protocole non disponible"
	MsgTraceabilityUnavailable = "fiche de traçabilité non disponible"
	MsgSystemNotFound          = "Système non trouvé"
	MsgDocumentFetchFailed     = "Erreur lors de la récupération du document."
	MsgDocumentSaveFailed      = "Erreur lors de la sauvegarde du PDF"
	MsgStatusUpdateFailed      = "Erreur lors de la mise à jour du statut"
)
