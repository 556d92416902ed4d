package services

import (
	"fmt"

	"resumatch/ats-engine/internal/models"
)

// VectorDocID derives the vector-index key for a document. Stable and
// re-derivable from (role, owner), so re-ingestion overwrites the previous
// entry instead of duplicating it.
func VectorDocID(role models.DocumentRole, ownerID uint) string {
	if role == models.RoleJobDescription {
		return fmt.Sprintf("job-%d-jd", ownerID)
	}
	return fmt.Sprintf("resume-%d", ownerID)
}
