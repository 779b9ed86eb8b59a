package services

import "time"

// Clock setters for the external test package.

func (s *LeadService) SetClock(now func() time.Time)           { s.now = now }
func (s *LeadAnalyticsService) SetClock(now func() time.Time)  { s.now = now }
func (s *MetaLeadSyncService) SetClock(now func() time.Time)   { s.now = now }
func (s *CurrencySyncService) SetClock(now func() time.Time)   { s.now = now }
func (s *PricingService) SetClock(now func() time.Time)        { s.now = now }
func (s *ChatService) SetClock(now func() time.Time)           { s.now = now }
