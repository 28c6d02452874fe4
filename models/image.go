package models

// Image 代表一張已成功上傳的圖片紀錄
// 只有在物件儲存確認收到檔案後才會建立，建立後不再修改也不會刪除，
// 因此名稱與位置只允許在建立時寫入，ID 由資料庫產生
type Image struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:text;not null;<-:create"`
	Url  string `gorm:"type:text;not null;<-:create"`
}
