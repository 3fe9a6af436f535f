package domain

// SurveyStatus is the review state of a field survey.
type SurveyStatus string

const (
	SurveyCompleted SurveyStatus = "completed"
	SurveyPending   SurveyStatus = "pending"
	SurveyUpdated   SurveyStatus = "updated"
)

// LandChangeType classifies a cadastral change.
type LandChangeType string

const (
	LandChangeNew    LandChangeType = "new"
	LandChangeModify LandChangeType = "modify"
	LandChangeDelete LandChangeType = "delete"
)

// CivilRequestType classifies a citizen request.
type CivilRequestType string

const (
	CivilRequestNew    CivilRequestType = "new"
	CivilRequestModify CivilRequestType = "modify"
)

// CivilRequestStatus is the handling state of a citizen request.
type CivilRequestStatus string

const (
	CivilRequestReceived   CivilRequestStatus = "received"
	CivilRequestProcessing CivilRequestStatus = "processing"
	CivilRequestDone       CivilRequestStatus = "done"
)

// PersonInfo describes an owner or a survey respondent.
type PersonInfo struct {
	Name         string `json:"name" yaml:"name"`
	Address      string `json:"address" yaml:"address"`
	Phone        string `json:"phone" yaml:"phone"`
	BirthDate    string `json:"birthDate" yaml:"birthDate"`
	Gender       string `json:"gender" yaml:"gender" validate:"omitempty,oneof=남 여"`
	Relationship string `json:"relationship,omitempty" yaml:"relationship"`
	Description  string `json:"description,omitempty" yaml:"description"`
}

// SurveySubRecord is one cultivation line inside a survey (a single orchard block).
type SurveySubRecord struct {
	ID                   string  `json:"id" yaml:"id"`
	Category             string  `json:"category" yaml:"category"`
	TotalArea            float64 `json:"totalArea" yaml:"totalArea" validate:"gte=0"`
	CultivationArea      float64 `json:"cultivationArea" yaml:"cultivationArea" validate:"gte=0"`
	Status               string  `json:"status" yaml:"status"`
	Cultivator           string  `json:"cultivator" yaml:"cultivator"`
	HasFacility          bool    `json:"hasFacility" yaml:"hasFacility"`
	Type                 string  `json:"type" yaml:"type"`
	VarietyName          string  `json:"varietyName" yaml:"varietyName"`
	PlantingYear         string  `json:"plantingYear" yaml:"plantingYear"`
	InstallYear          string  `json:"installYear" yaml:"installYear"`
	TreeAge              int     `json:"treeAge" yaml:"treeAge" validate:"gte=0"`
	TreeCount            int     `json:"treeCount" yaml:"treeCount" validate:"gte=0"`
	Spacing              string  `json:"spacing" yaml:"spacing"`
	IsHeated             bool    `json:"isHeated" yaml:"isHeated"`
	OtherType            string  `json:"otherType" yaml:"otherType"`
	NonCultivationDetail string  `json:"nonCultivationDetail" yaml:"nonCultivationDetail"`
	RecordedAt           string  `json:"recordedAt" yaml:"recordedAt"`
}

// SurveyRecord is a surveyed citrus parcel.
type SurveyRecord struct {
	ID             string            `json:"id" yaml:"id"`
	Address        string            `json:"address" yaml:"address"`
	OwnerName      string            `json:"ownerName" yaml:"ownerName"`
	OwnerPhone     string            `json:"ownerPhone" yaml:"ownerPhone"`
	Variety        string            `json:"variety" yaml:"variety"`
	Area           float64           `json:"area" yaml:"area"` // ㎡
	Status         SurveyStatus      `json:"status" yaml:"status"`
	SurveyDate     string            `json:"surveyDate" yaml:"surveyDate"` // YYYY-MM-DD
	Coordinates    Coordinates       `json:"coordinates" yaml:"coordinates"`
	Boundary       [][]float64       `json:"boundary,omitempty" yaml:"boundary"` // [lng, lat] ring
	OwnerInfo      *PersonInfo       `json:"ownerInfo,omitempty" yaml:"ownerInfo"`
	RespondentInfo *PersonInfo       `json:"respondentInfo,omitempty" yaml:"respondentInfo"`
	SubRecords     []SurveySubRecord `json:"subRecords,omitempty" yaml:"subRecords"`
}

// TreeCount sums the trees over all sub-records.
func (s *SurveyRecord) TreeCount() int {
	n := 0
	for _, sub := range s.SubRecords {
		n += sub.TreeCount
	}
	return n
}

// LandChange is an entry of the cadastral change log.
type LandChange struct {
	ID          string         `json:"id" yaml:"id"`
	Type        LandChangeType `json:"type" yaml:"type"`
	Address     string         `json:"address" yaml:"address"`
	ChangeDate  string         `json:"changeDate" yaml:"changeDate"`
	Details     string         `json:"details" yaml:"details"`
	Coordinates Coordinates    `json:"coordinates" yaml:"coordinates"`
	Boundary    [][]float64    `json:"boundary,omitempty" yaml:"boundary"`
	Area        float64        `json:"area" yaml:"area"`
}

// CivilRequest is a registration or correction request filed by a citizen.
type CivilRequest struct {
	ID             string             `json:"id" yaml:"id"`
	Type           CivilRequestType   `json:"type" yaml:"type"`
	RequestDate    string             `json:"requestDate" yaml:"requestDate"`
	Requester      string             `json:"requester" yaml:"requester"`
	RequesterPhone string             `json:"requesterPhone" yaml:"requesterPhone"`
	Address        string             `json:"address" yaml:"address"`
	Status         CivilRequestStatus `json:"status" yaml:"status"`
	Details        string             `json:"details" yaml:"details"`
	Coordinates    Coordinates        `json:"coordinates" yaml:"coordinates"`
	Boundary       [][]float64        `json:"boundary,omitempty" yaml:"boundary"`
	Area           float64            `json:"area" yaml:"area"`
}

// DashboardStats are the headline counters of the dashboard.
type DashboardStats struct {
	CompletedSurveys     int `json:"completed_surveys"`
	TotalSurveys         int `json:"total_surveys"`
	LandChanges          int `json:"land_changes"`
	LandChangesPending   int `json:"land_changes_pending"`
	CivilRequests        int `json:"civil_requests"`
	CivilRequestsPending int `json:"civil_requests_pending"`
	ManagedFarms         int `json:"managed_farms"`
}

// EntityKind names one of the record collections.
type EntityKind string

const (
	KindSurvey       EntityKind = "surveys"
	KindLandChange   EntityKind = "land-changes"
	KindCivilRequest EntityKind = "civil-requests"
)

// EntityEvent is published whenever a record changes.
type EntityEvent struct {
	Kind     EntityKind `json:"kind"`
	Action   string     `json:"action"`
	EntityID string     `json:"entity_id"`
	At       string     `json:"at"`
	Payload  any        `json:"payload,omitempty"`
}
