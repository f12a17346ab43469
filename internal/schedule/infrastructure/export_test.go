package infrastructure

// VoyageForeignKeys informa se tickets e availability têm FK para voyages no banco.
func VoyageForeignKeys(s *GormStore) (tickets, availability bool) {
	m := s.db.Migrator()
	return m.HasConstraint(&voyageModel{}, "Tickets"), m.HasConstraint(&voyageModel{}, "Availability")
}
