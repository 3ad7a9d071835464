package roster

// Member identifies an eligible duty participant by student number (NIM).
type Member struct {
	NIM  string
	Name string
}

// members is the compiled-in roster. The list is reference data sourced from
// the course enrolment sheet and never mutated at runtime.
var members = []Member{
	{NIM: "1202223063", Name: "Charles Ricky Barnabas"},
	{NIM: "1202220290", Name: "Muadzam Haqqani"},
	{NIM: "1202223098", Name: "Indah Fitri Amelia"},
	{NIM: "1202223191", Name: "Farah Rahil Nurin Shabrina"},
	{NIM: "1202220321", Name: "Muhammad arya kamal"},
	{NIM: "103012300339", Name: "Muhammad Emirsyah Makarim"},
	{NIM: "102022330069", Name: "Bimo Alfarizy Lukman"},
	{NIM: "1202223050", Name: "Muhammad Raya Ramadhan"},
	{NIM: "1202220294", Name: "Kaisa izzatunniswah"},
	{NIM: "1202220366", Name: "William Andreas Pandapotan Purba"},
	{NIM: "1202223102", Name: "Alfina Nur Fadilla"},
	{NIM: "1202223212", Name: "Raras Nurhaliza Haqi"},
	{NIM: "102022300416", Name: "Jehezkiel Agna Saputra"},
	{NIM: "1202220381", Name: "Titisya Dewi Wulan Sekarsari"},
	{NIM: "1202220216", Name: "Muhammad Ricko Arif Andrian"},
	{NIM: "1202223011", Name: "Mochammad Fadhlan Al-Ghiffari"},
	{NIM: "1202220029", Name: "Alfan Gunawan Akhmad"},
	{NIM: "102022300147", Name: "Fairuzia Meyla Fatinah"},
	{NIM: "1202220171", Name: "Endra Lazuardi Ardafi Rahman"},
	{NIM: "1305220010", Name: "Izzulhaq Mahardika"},
	{NIM: "1202223195", Name: "Azel Pandya Maheswara Nur Achmad"},
	{NIM: "1202223242", Name: "Kresna Mukti Wibowo"},
	{NIM: "1202223113", Name: "Aditya Jaka Prasaja"},
	{NIM: "1202220022", Name: "Dhivi Cagardimika Sumardiyono"},
	{NIM: "1202223030", Name: "Naufal Akmal Rabbani"},
	{NIM: "1202220293", Name: "Aswangga Prabaswara"},
	{NIM: "1202223134", Name: "Ahmad Alifi"},
	{NIM: "1202220152", Name: "Farid Ghani"},
	{NIM: "1202223217", Name: "Dhimmas Parikesit"},
	{NIM: "1202223182", Name: "Susanti Afrilia"},
	{NIM: "1202220264", Name: "Ridwan Abdurahman"},
	{NIM: "1202220122", Name: "Ilmi Syahbana Hasanudin"},
	{NIM: "102022300333", Name: "Fadia Rizqa Yunanto"},
}

// Pool returns a copy of the full roster. Callers may reorder the returned
// slice freely without affecting other consumers.
func Pool() []Member {
	pool := make([]Member, len(members))
	copy(pool, members)
	return pool
}

// Find looks up a member by NIM. The second return value reports whether the
// NIM belongs to the roster.
func Find(nim string) (Member, bool) {
	for _, m := range members {
		if m.NIM == nim {
			return m, true
		}
	}
	return Member{}, false
}

// Size reports the number of roster members.
func Size() int {
	return len(members)
}
