package core

// FieldPattern lists the header aliases that identify one canonical field.
type FieldPattern struct {
	Name    string
	Aliases []string
}

// PatternTable holds the field patterns for one entity.
// Field order is the order detection walks them in.
type PatternTable struct {
	Entity Entity
	Fields []FieldPattern
}

// FieldNames returns the canonical field names in declared order.
func (t PatternTable) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// StudentPatterns covers the student sheet columns used by Dapodik style exports.
var StudentPatterns = PatternTable{
	Entity: EntityStudent,
	Fields: []FieldPattern{
		{Name: "nama", Aliases: []string{"nama siswa", "nama lengkap siswa", "nama lengkap", "nama peserta didik", "nama"}},
		{Name: "nisn", Aliases: []string{"nisn"}},
		{Name: "nis", Aliases: []string{"nis lokal", "nis"}},
		{Name: "jenisKelamin", Aliases: []string{"jenis kelamin", "jk", "gender", "l/p"}},
		{Name: "tanggalLahir", Aliases: []string{"tanggal lahir", "tgl lahir"}},
		{Name: "tempatLahir", Aliases: []string{"tempat lahir"}},
		{Name: "alamat", Aliases: []string{"alamat siswa", "alamat"}},
		{Name: "kelasAngkatan", Aliases: []string{"diterima di kelas", "kelas angkatan"}},
		{Name: "kelas", Aliases: []string{"kelas saat ini", "kelas", "rombel"}},
		{Name: "tahunAjaranMasuk", Aliases: []string{"tahun ajaran masuk", "ta masuk"}},
		{Name: "noHP", Aliases: []string{"no hp siswa", "hp siswa", "telepon siswa"}},
	},
}

// GuardianPatterns covers parent and guardian columns on the student sheet.
var GuardianPatterns = PatternTable{
	Entity: EntityGuardian,
	Fields: []FieldPattern{
		{Name: "nama", Aliases: []string{"nama wali", "nama orang tua", "nama orangtua"}},
		{Name: "namaAyah", Aliases: []string{"nama ayah", "ayah kandung"}},
		{Name: "namaIbu", Aliases: []string{"nama ibu", "ibu kandung"}},
		{Name: "jenisKelamin", Aliases: []string{"jenis kelamin wali", "jk wali"}},
		{Name: "hubungan", Aliases: []string{"hubungan wali", "hubungan", "status wali"}},
		{Name: "noHP", Aliases: []string{"no hp orang tua", "no hp wali", "no hp ortu", "hp orang tua", "telepon orang tua", "no telp wali", "no wa"}},
		{Name: "email", Aliases: []string{"email wali", "email orang tua"}},
		{Name: "pekerjaan", Aliases: []string{"pekerjaan wali", "pekerjaan orang tua", "pekerjaan ayah"}},
		{Name: "alamat", Aliases: []string{"alamat wali", "alamat orang tua"}},
	},
}

// TeacherPatterns covers the teacher sheet columns.
var TeacherPatterns = PatternTable{
	Entity: EntityTeacher,
	Fields: []FieldPattern{
		{Name: "kodeGuru", Aliases: []string{"kode guru / username", "kode guru", "username", "kode"}},
		{Name: "nama", Aliases: []string{"nama lengkap", "nama guru", "nama"}},
		{Name: "nip", Aliases: []string{"nip"}},
		{Name: "email", Aliases: []string{"email"}},
		{Name: "jenisKelamin", Aliases: []string{"jenis kelamin", "jk"}},
		{Name: "tanggalLahir", Aliases: []string{"tanggal lahir", "tgl lahir"}},
		{Name: "tempatLahir", Aliases: []string{"tempat lahir"}},
		{Name: "kelasBinaan", Aliases: []string{"kelas binaan"}},
		{Name: "noHP", Aliases: []string{"no hp", "telepon", "no telp"}},
		{Name: "alamat", Aliases: []string{"alamat"}},
	},
}
