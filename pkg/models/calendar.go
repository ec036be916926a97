package models

// Weekday identifies one day of the broadcast week.
type Weekday struct {
	En string `json:"en"`
	CN string `json:"cn"`
	JA string `json:"ja"`
	ID int    `json:"id"`
}

// Rating is the aggregate user score of a broadcast item.
type Rating struct {
	Total int            `json:"total"`
	Count map[string]int `json:"count,omitempty"`
	Score float64        `json:"score"`
}

// CalendarItem is the reduced projection of a broadcast entry kept in the
// calendar artifact.
type CalendarItem struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	NameCN  string  `json:"name_cn"`
	Images  *Images `json:"images,omitempty"`
	AirDate string  `json:"air_date"`
	Rank    int     `json:"rank,omitempty"`
	Rating  *Rating `json:"rating,omitempty"`
}

// CalendarDay is one weekday bucket of the calendar artifact.
type CalendarDay struct {
	Weekday Weekday        `json:"weekday"`
	Items   []CalendarItem `json:"items"`
}
