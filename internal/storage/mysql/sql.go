package mysql

const upsertStageSQL = `
INSERT INTO stages_recuperation_points
  (id, city, postal_code, full_address, location_name, date_start, date_end, price, latitude, longitude)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  city          = VALUES(city),
  postal_code   = VALUES(postal_code),
  full_address  = VALUES(full_address),
  location_name = VALUES(location_name),
  date_start    = VALUES(date_start),
  date_end      = VALUES(date_end),
  price         = VALUES(price),
  latitude      = VALUES(latitude),
  longitude     = VALUES(longitude),
  updated_at    = CURRENT_TIMESTAMP
`

const stageColumns = `
  id, city, postal_code, full_address, location_name,
  date_start, date_end, price, latitude, longitude,
  created_at, updated_at`

const getStageSQL = `
SELECT` + stageColumns + `
FROM stages_recuperation_points
WHERE id = ?
`

// listStagesSQL is only the base; the WHERE and ORDER BY parts are built in
// ListStages from a whitelist, never from raw client input.
const listStagesSQL = `
SELECT` + stageColumns + `
FROM stages_recuperation_points
WHERE 1=1`

const distinctCitiesSQL = `
SELECT DISTINCT city FROM stages_recuperation_points ORDER BY city
`

const countReferencesSQL = `
SELECT COUNT(*) FROM stage_bookings WHERE booking_reference LIKE ?
`

const insertBookingSQL = `
INSERT INTO stage_bookings (
  id, stage_id, booking_reference, civilite, nom, prenom, date_naissance,
  adresse, code_postal, ville, email, email_confirmation, telephone_mobile,
  guarantee_serenite, cgv_accepted
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Confirmation pages need the stage details next to the booking, hence the
// join.
const getBookingByRefSQL = `
SELECT
  b.id, b.stage_id, b.booking_reference,
  b.civilite, b.nom, b.prenom, b.date_naissance,
  b.adresse, b.code_postal, b.ville,
  b.email, b.email_confirmation, b.telephone_mobile,
  b.guarantee_serenite, b.cgv_accepted,
  b.created_at, b.updated_at,
  s.city, s.full_address, s.date_start, s.date_end, s.price
FROM stage_bookings b
JOIN stages_recuperation_points s ON b.stage_id = s.id
WHERE b.booking_reference = ?
`
