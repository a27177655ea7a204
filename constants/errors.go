package constants

// Messages d'erreur HTTP courants
const (
	ErrServerError        = "Erreur interne du serveur"
	ErrServiceUnavailable = "Service temporairement indisponible"
	ErrValidation         = "Erreur de validation"
	ErrInvalidJSONBody    = "Body JSON invalide"
	ErrInvalidID          = "Ressource non trouvée - ID invalide"
	ErrInvalidIDFormat    = "Format d'ID invalide"
	ErrDuplicate          = "Ressource déjà existante"
	ErrRouteNotFound      = "Route non trouvée"
)

// Authentification et autorisations
const (
	ErrNotAuthenticated      = "Accès non autorisé, veuillez vous connecter"
	ErrInvalidCredentials    = "Identifiants invalides"
	ErrMissingCredentials    = "Veuillez fournir un email et un mot de passe"
	ErrWrongPassword         = "Le mot de passe actuel est incorrect"
	ErrRoleNotAllowed        = "Le rôle %s n'est pas autorisé à accéder à cette ressource"
	ErrNotOwnerRecetteUpdate = "Non autorisé à mettre à jour cette recette"
	ErrNotOwnerRecetteDelete = "Non autorisé à supprimer cette recette"
	ErrNotOwnerCommentUpdate = "Non autorisé à modifier ce commentaire"
	ErrNotOwnerCommentDelete = "Non autorisé à supprimer ce commentaire"
	ErrNotOwnerFavoris       = "Non autorisé à accéder à ces favoris"
	ErrNotOwnerAvatar        = "Non autorisé à mettre à jour cet avatar"
)

// Ressources introuvables
const (
	ErrRecetteNotFound     = "Recette non trouvée"
	ErrCommentaireNotFound = "Commentaire non trouvé"
	ErrUserNotFound        = "Utilisateur non trouvé"
)

// Fichiers envoyés
const (
	ErrNoFile        = "Veuillez télécharger une image"
	ErrNotAnImage    = "Seules les images sont autorisées!"
	ErrFileTooLarge  = "L'image ne doit pas dépasser 5 Mo"
	ErrUploadFailure = "Problème lors du téléchargement du fichier"
)

// Messages de succès
const (
	MsgLogout         = "Déconnexion réussie"
	MsgRecetteDeleted = "Recette supprimée"
	MsgCommentDeleted = "Commentaire supprimé"
	MsgUserDeleted    = "Utilisateur supprimé"
	MsgFavoriAjoute   = "Recette ajoutée aux favoris"
	MsgFavoriRetire   = "Recette retirée des favoris"
	MsgSubscribed     = "Abonnement enregistré"
	MsgUnsubscribed   = "Abonnement supprimé"
)

// En-têtes HTTP
const (
	HeaderContentType     = "Content-Type"
	HeaderApplicationJSON = "application/json"
)

// Notes et notifications
const (
	ErrNoteConflict    = "La recette a été modifiée pendant l'enregistrement de la note, veuillez réessayer"
	ErrWebPushDisabled = "Les notifications Web Push ne sont pas configurées"
)
