package config

// Settings carries the named policy values supplied by the configuration
// collaborator.  The core consumes them verbatim; defaults mirror the
// seeded system configuration so the service behaves sensibly when a
// value has not been provisioned.
type Settings struct {
	ViolationTime        int     // check-in / away grace minutes
	MinCreditScore       int     // minimum credit score required to reserve
	MessageSquareEnabled bool    // whether the message square topic is active
	LibraryLatitude      float64 // geofence centre latitude
	LibraryLongitude     float64 // geofence centre longitude
	GeofenceRadiusMeters float64 // accepted distance from the library
	ReleaseBufferTime    int     // minutes before slot end a release still rewards credit
	CheckinBeforeWindow  int     // minutes before slot start check-in opens
	CheckinAfterWindow   int     // minutes after slot start check-in closes
	OccupancyWarningTime int     // absence minutes before a warning is issued
	OccupancyThreshold   int     // absence minutes before auto checkout
	ViolationDeduct      int     // credit deducted for no-show / away timeout
	OccupancyDeduct      int     // credit deducted for an occupancy violation
	ReleaseReward        int     // credit rewarded for a completed release
}

// DefaultSettings returns the seeded policy values.
func DefaultSettings() Settings {
	return Settings{
		ViolationTime:        30,
		MinCreditScore:       60,
		MessageSquareEnabled: true,
		LibraryLatitude:      0,
		LibraryLongitude:     0,
		GeofenceRadiusMeters: 500,
		ReleaseBufferTime:    15,
		CheckinBeforeWindow:  15,
		CheckinAfterWindow:   15,
		OccupancyWarningTime: 45,
		OccupancyThreshold:   60,
		ViolationDeduct:      10,
		OccupancyDeduct:      15,
		ReleaseReward:        2,
	}
}

// LoadSettings builds Settings from environment variables, using the
// seeded defaults for anything unset.  The variable names match the
// configuration collaborator's keys upper-cased.
func LoadSettings() Settings {
	def := DefaultSettings()
	return Settings{
		ViolationTime:        envInt("VIOLATION_TIME", def.ViolationTime),
		MinCreditScore:       envInt("MIN_CREDIT_SCORE", def.MinCreditScore),
		MessageSquareEnabled: envBool("MESSAGE_SQUARE_ENABLED", def.MessageSquareEnabled),
		LibraryLatitude:      envFloat("LIBRARY_LATITUDE", def.LibraryLatitude),
		LibraryLongitude:     envFloat("LIBRARY_LONGITUDE", def.LibraryLongitude),
		GeofenceRadiusMeters: envFloat("GEOFENCE_RADIUS_METERS", def.GeofenceRadiusMeters),
		ReleaseBufferTime:    envInt("RELEASE_BUFFER_TIME", def.ReleaseBufferTime),
		CheckinBeforeWindow:  envInt("CHECKIN_BEFORE_WINDOW", def.CheckinBeforeWindow),
		CheckinAfterWindow:   envInt("CHECKIN_AFTER_WINDOW", def.CheckinAfterWindow),
		OccupancyWarningTime: envInt("OCCUPANCY_WARNING_TIME", def.OccupancyWarningTime),
		OccupancyThreshold:   envInt("OCCUPANCY_THRESHOLD", def.OccupancyThreshold),
		ViolationDeduct:      envInt("VIOLATION_CREDIT_DEDUCT", def.ViolationDeduct),
		OccupancyDeduct:      envInt("OCCUPANCY_CREDIT_DEDUCT", def.OccupancyDeduct),
		ReleaseReward:        envInt("RELEASE_CREDIT_REWARD", def.ReleaseReward),
	}
}
