package repository

// AuditRepository : piste d'audit légale (conservation dix ans). Chaque
// transition gardée et chaque recalcul modifiant un total persisté écrit
// exactement un enregistrement, dans la même transaction que la mutation.
type AuditRepository interface {
	Record(entityType, entityID, action, oldValue, newValue string) error
}
